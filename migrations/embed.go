// Package migrations содержит встроенные SQL-миграции схемы сервиса.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Dir - путь внутри FS для источника iofs.
const Dir = "."
