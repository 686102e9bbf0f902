// Package siteassets provides embedded assets for the site asset tools.
//
// The root package exists solely to embed [siteassets.default.toml] via
// [DefaultConfigTOML]. The init command writes it out as siteassets.toml.
package siteassets

import _ "embed"

// DefaultConfigTOML holds the raw bytes of siteassets.default.toml,
// generated by cmd/genconfig and embedded at build time.
//
//go:embed siteassets.default.toml
var DefaultConfigTOML []byte
