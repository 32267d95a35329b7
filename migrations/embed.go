// Package migrations embeds the SQL schema migrations so the server binary
// can apply them without the source tree.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql file
//
//go:embed *.sql
var FS embed.FS
