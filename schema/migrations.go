// Package schema holds the embedded SQL migrations for the template store.
// Dynamic record tables are not migrated here; they are declared at runtime
// by the collection registry.
package schema

import "embed"

//go:embed pgmigrations/*.sql
var MigrationsFS embed.FS
