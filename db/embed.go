// Package db provides embedded database schema and seed data.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts is the default product seed data in the format accepted by
// cmd/seed-db.
//
//go:embed seed/products.json
var SeedProducts []byte
