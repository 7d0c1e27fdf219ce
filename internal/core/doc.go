// Package core provides the shared domain models used across the conductor.
// These models are storage-agnostic and can be consumed by both the
// deployment compiler and the connection validators.
//
// Structure:
//
//	pipeline.go   - Pipeline, Connection, Transform, Predicate
//	signal.go     - Signal and the payload builders for each signal type
//	errors.go     - Coded errors shared by the compiler packages
package core
