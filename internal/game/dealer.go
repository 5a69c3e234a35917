// apps/go-server/internal/game/dealer.go
//
// Round production: fetch a question, fetch three decoys concurrently,
// merge and shuffle the options.

package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

const (
	// OptionCount is the number of answer buttons per round.
	OptionCount = 4

	// Placeholder stands in for a decoy that could not be fetched.
	Placeholder = "Placeholder"

	// collisionDecoy replaces a decoy equal to the answer when the answer
	// is itself the placeholder.
	collisionDecoy = "None of these"
)

var ErrQuestionFetch = errors.New("question fetch failed")

// QuestionSource provides one trivia question per call.
type QuestionSource interface {
	FetchQuestion(ctx context.Context) (Question, error)
}

// DecoySource provides one wrong answer per call. It must always return a
// usable string; failures are masked by the implementation.
type DecoySource interface {
	FetchDecoy(ctx context.Context) string
}

// Dealer builds rounds from a question source and a decoy source.
type Dealer struct {
	questions QuestionSource
	decoys    DecoySource
	intn      func(n int) int
}

// NewDealer wires the two sources with a uniform random shuffle.
func NewDealer(q QuestionSource, d DecoySource) *Dealer {
	return &Dealer{questions: q, decoys: d, intn: rand.IntN}
}

// WithRand replaces the random source used by the shuffle (tests).
func (d *Dealer) WithRand(intn func(n int) int) *Dealer {
	d.intn = intn
	return d
}

// NextRound fetches a question and builds its options.
// On question failure no round is returned and the error wraps
// ErrQuestionFetch; the caller decides whether to log and stay put.
func (d *Dealer) NextRound(ctx context.Context) (Round, error) {
	q, err := d.questions.FetchQuestion(ctx)
	if err != nil {
		return Round{}, fmt.Errorf("%w: %w", ErrQuestionFetch, err)
	}
	return Round{Question: q, Options: d.BuildOptions(ctx, q.Answer)}, nil
}

// BuildOptions returns the correct answer plus three decoys in random order.
// The three decoy fetches run concurrently and each writes its own slot.
func (d *Dealer) BuildOptions(ctx context.Context, correct string) []string {
	opts := make([]string, OptionCount)

	var g errgroup.Group
	for i := 0; i < OptionCount-1; i++ {
		g.Go(func() error {
			opts[i] = distinctDecoy(d.decoys.FetchDecoy(ctx), correct)
			return nil
		})
	}
	_ = g.Wait() // decoy fetches never fail

	opts[OptionCount-1] = correct
	Shuffle(opts, d.intn)
	return opts
}

// distinctDecoy keeps a decoy from duplicating the correct answer.
func distinctDecoy(decoy, correct string) string {
	if decoy != correct {
		return decoy
	}
	if correct == Placeholder {
		return collisionDecoy
	}
	return Placeholder
}

// Shuffle permutes xs in place with Fisher–Yates. intn(n) must return a
// uniform value in [0, n).
func Shuffle(xs []string, intn func(n int) int) {
	for i := len(xs) - 1; i > 0; i-- {
		j := intn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
