// Package web embeds the single-page client served at /ui/.
package web

import "embed"

//go:embed index.html
var FS embed.FS
