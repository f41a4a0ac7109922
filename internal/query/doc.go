// Package query turns entity search requests into filter specs. Column
// names here are the storage column names; the postgres repositories
// render them as SQL and the memory repositories resolve them per row.
package query
