package monk

import "embed"

// EmbeddedAssets holds the stylesheet served at /public/monk.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
