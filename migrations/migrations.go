// Package migrations embeds the SQL schema migrations so the migrate
// command and the database tests apply the same files.
package migrations

import "embed"

// FS holds every *.sql migration at its root.
//
//go:embed *.sql
var FS embed.FS
