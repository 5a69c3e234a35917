package assets

import (
	_ "embed"
)

//go:embed index.html
var indexHTML []byte

// IndexHTML returns the browser client served at "/".
func IndexHTML() []byte {
	return indexHTML
}
