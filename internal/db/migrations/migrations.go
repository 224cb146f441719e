// Package migrations embeds the goose SQL migration files for the
// relational schema of spec §6.3.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
