// Package history records merge runs in a SQLite database so past results
// can be listed without re-reading the load order.
package history
