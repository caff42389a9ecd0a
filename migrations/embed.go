package migrations

import "embed"

// FS holds the goose migrations applied at startup and by the e2e setup.
//
//go:embed *.sql
var FS embed.FS
