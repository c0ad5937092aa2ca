// Package schemas holds the JSON Schemas for advisory oracle payloads and saved
// transcripts. The files are embedded so validation works from any directory.
package schemas

import "embed"

// Files contains every *.schema.json in this directory.
//
//go:embed *.schema.json
var Files embed.FS
