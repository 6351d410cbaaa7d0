// Package migrations embeds the SQL schema migrations into the binary so the
// service can migrate its store without the files present on disk.
//
// Usage:
//
//	applied, err := db.Migrate(ctx, migrations.FS)
package migrations

import "embed"

// FS holds every *.sql migration at its root.
//
//go:embed *.sql
var FS embed.FS
