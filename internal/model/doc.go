// Package model defines the data shared by every stage of the AutoModel
// expression compiler.
//
// Tables and fields are bootstrap-time values: they are built once by the
// schema loaders, handed to the registry, and never mutated afterwards.
// Tokens and Contexts live for exactly one compile call.
//
// A compile call moves a Context through these stages:
//
//	scan -> resolve -> classify -> convert -> generate -> Finalize
//
// Every stage attaches its failure to the Token it was processing (see
// Diagnostic) rather than aborting the whole call.
package model
