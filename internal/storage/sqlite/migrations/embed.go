package migrations

import "embed"

// FS contains embedded SQLite migrations for PSA result export.
//
//go:embed *.sql
var FS embed.FS
