// Package core defines the shared language of the bankdash system.
//
// This package contains:
//   - Domain entities (Module, ModulesPayload, ConnectionRequest, DatabaseType)
//   - Wire decoding with schema validation (DecodeModulesPayload, DecodeDatabaseTypes)
//   - Error types shared by HTTP clients (StatusError, DecodeError)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
