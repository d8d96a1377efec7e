// Package migrations holds the schema steps applied by the SQLite store,
// numbered NNN_name.up.sql / NNN_name.down.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
