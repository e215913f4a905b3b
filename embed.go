package mdblog

import "embed"

// EmbeddedAssets contains the stylesheet and page script served under
// /assets/: style.css, app.js
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
