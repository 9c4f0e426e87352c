// Package postgres provides PostgreSQL-backed implementations of the
// store interfaces used by the remote API server.
package postgres
