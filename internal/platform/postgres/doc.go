// Package postgres implements the store interfaces on PostgreSQL using
// database/sql over the pgx stdlib driver. Implementations accept a
// store.DBTX so they run identically against a connection pool or inside a
// transaction obtained from store.RunInTransaction.
package postgres
