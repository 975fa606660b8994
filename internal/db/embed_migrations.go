package db

import "embed"

// MigrationFS holds the schema migration scripts compiled into the binary,
// so cmd/migrate needs no filesystem access to the source tree.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
