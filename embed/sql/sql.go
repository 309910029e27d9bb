package sql

import _ "embed"

// Schema creates the key/value table that holds persisted records.
//
//go:embed schema.sql
var Schema string
