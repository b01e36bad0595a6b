// Package stores persists computed plans. The SQLite implementation uses
// WAL mode and embedded golang-migrate migrations.
package stores
