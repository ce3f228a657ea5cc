// Package migrations embeds the local store schema, applied with goose on
// startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
