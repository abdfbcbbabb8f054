// Package migrations embeds the SQL schema migrations so the binary and the
// integration tests apply exactly the same files.
package migrations

import "embed"

// FS holds the golang-migrate files ({version}_{title}.{up|down}.sql).
//
//go:embed *.sql
var FS embed.FS
