package infra

import _ "embed"

// Schema creates every table and index the Postgres repositories rely on.
// Statements are idempotent and safe to re-apply.
//
//go:embed schema.sql
var Schema string
