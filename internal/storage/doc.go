// Package storage turns the process-wide offset and schema-history backend
// settings into a concrete, per-pipeline storage descriptor.
//
// Architecture:
//
//	TableNameResolver - pipeline name + suffix/template -> SQL-safe identifier
//	Store             - sealed sum type over the supported backends
//	Resolver          - one select-backend-and-resolve-identifiers strategy,
//	                    instantiated for offsets and for schema history
//	Preflight         - optional reachability check of the configured backends
package storage
