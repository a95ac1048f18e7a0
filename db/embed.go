// Package db embeds the database schema so binaries can bootstrap
// their own tables without an external migration step.
package db

import _ "embed"

// Schema holds the DDL for every back-office table. Applied by
// repository.RunMigrations on startup.
//
//go:embed migrations/001_schema.sql
var Schema string
