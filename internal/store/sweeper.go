package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweep prunes sessions idle for longer than ttl, checking every interval,
// until ctx is cancelled.
func Sweep(ctx context.Context, st Store, ttl, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := st.Prune(ctx, now.Add(-ttl)); n > 0 {
				log.Debug().Int("pruned", n).Msg("idle sessions pruned")
			}
		}
	}
}
