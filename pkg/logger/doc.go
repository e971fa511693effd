// Package logger builds configured slog.Logger instances for the billing
// service. JSON output is the default so logs are ingestible by aggregation
// systems; text output is available for local development. Attr helpers keep
// domain field names (account_id, event_id, event_type) consistent across
// packages.
package logger
