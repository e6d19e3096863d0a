// Package schemas provides the embedded SQL schema files.
package schemas

import "embed"

// Migrations contains the SQL migration files, applied in lexical order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
