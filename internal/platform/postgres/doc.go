// Package postgres provides the PostgreSQL implementation of the read-only
// deck store defined in the internal/store package.
//
// Connections come from a bounded pool (see internal/platform/pool) of
// *pgx.Conn values. Query text is produced by the builders in query.go so
// that every caller-supplied value travels as a bound parameter; the store
// shapes result rows into domain values and classifies driver errors into
// the store package's sentinels.
package postgres
