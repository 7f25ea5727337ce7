// Package cli renders command output for the geotag commands.
//
// Commands describe their output as a list of named Tables. Render prints
// them in the format selected with --output:
//
//   - table: rounded go-pretty tables, long cells truncated
//   - plain: kubectl-style aligned columns for grep and awk
//   - json, yaml: one object per table, keyed by table name, each holding a
//     list of rows keyed by lower-cased column name
//
// Commands register the flags with RegisterOutputFlags.
package cli
