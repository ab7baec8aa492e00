package migrations

import "embed"

// Files SQL-миграции схемы, встроенные в бинарник
//
//go:embed *.sql
var Files embed.FS
