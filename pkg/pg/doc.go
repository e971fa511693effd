// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// startup retries, goose/v3 schema migrations, and a readiness probe. The API
// surface is deliberately small; query code lives with the repositories that
// own it.
package pg
