package migrations

import "embed"

// one sub directory per dialect, embed does not allow ../ so the SQL lives next to this file
//
//go:embed postgres mysql sqllite3
var FS embed.FS
