// Package db provides the embedded schema for the local order journal.
package db

import _ "embed"

// Schema contains the DDL for the journal tables.
//
//go:embed migrations/001_schema.sql
var Schema string
