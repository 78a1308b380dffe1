// Package postgres implements the store interfaces against PostgreSQL.
// The series aggregate persists as a single row holding the full document
// as JSONB next to a version column; saves are compare-and-swap updates on
// that version, which gives the engine its single-writer-wins semantics
// without long-lived locks.
package postgres
