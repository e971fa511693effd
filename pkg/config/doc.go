// Package config loads typed configuration structs from environment variables.
//
// Each component of the service declares its own Config struct with `env:`
// tags (see github.com/caarlos0/env). The loader bootstraps a .env file once
// per process, which keeps local development and container deployments on the
// same code path.
package config
