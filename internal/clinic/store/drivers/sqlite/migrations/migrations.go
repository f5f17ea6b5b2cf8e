// Package migrations embeds the SQL schema migrations applied by the sqlite
// driver on start-up.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
