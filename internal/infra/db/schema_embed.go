package db

import _ "embed"

// Schema holds the bootstrap SQL applied at startup and by integration tests.
//
//go:embed schema.sql
var Schema string
