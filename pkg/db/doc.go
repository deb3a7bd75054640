// Package db provides PostgreSQL connection utilities for the shop
// backend: pooled connections with startup retry, goose migrations over
// an embedded filesystem, a transaction helper, and a health check
// closure. All settings come from environment variables (see Config).
package db
