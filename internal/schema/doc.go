// Package schema builds table definitions for the registry.
//
// Tables come from YAML or CUE definition files, or are derived from Go
// struct types by reflection. All three paths share the same defaulting
// rules (see Rules) before the tables are registered.
package schema
