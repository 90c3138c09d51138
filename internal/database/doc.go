// Package database manages the PostgreSQL connection pool backing the
// optional tick archive.
package database
