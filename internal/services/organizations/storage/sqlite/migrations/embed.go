package migrations

import "embed"

// FS contains embedded SQLite migrations for organizations storage.
//
//go:embed *.sql
var FS embed.FS
