// Package dashboard provides the embedded status page assets for
// seatwatch.
//
// This package uses Go's embed directive to include the status page
// HTML (with inline CSS and JavaScript) at compile time, enabling
// single-binary deployment without external asset files.
//
// The embedded assets are served by the server package at the root
// path ("/"). Users of the seatwatch library should not need to
// interact with this package directly.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the status page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Status page with inline CSS and JavaScript
//
// Assets is used by the server package to serve the page. The embed
// directive includes all files in the assets directory at compile
// time.
//
//go:embed assets/*
var Assets embed.FS
