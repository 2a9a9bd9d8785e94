// Package migrations embeds the SQL schema applied at startup and in tests.
// Scripts are written to run unchanged on PostgreSQL and SQLite.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
