// Package registry holds the process-wide catalog of queryable tables.
//
// Registration is a single-threaded bootstrap phase guarded by a mutex.
// Seal (or the first Lookup) freezes the catalog into an immutable
// snapshot published through an atomic pointer; from then on lookups and
// field resolution take no locks and further registration fails with
// ErrSealed.
package registry
