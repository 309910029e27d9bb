// Package web embeds the browser front end served by the HTTP server.
package web

import "embed"

//go:embed index.html app.js
var Assets embed.FS
