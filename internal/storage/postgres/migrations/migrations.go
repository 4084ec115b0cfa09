// Package migrations встраивает SQL-миграции PostgreSQL в бинарь (goose).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
