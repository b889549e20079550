// Package web holds the static chat page served at the root path.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
