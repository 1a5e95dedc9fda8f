// Package storage provides audit.Storage backends: SQLite for durable
// deployments and an in-memory map for tests and development.
package storage
