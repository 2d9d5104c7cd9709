// Package contracts defines the telemetry record types and correlation
// identifiers shared by the rest of the pipeline.
//
// This package contains pure domain types with ZERO external dependencies
// outside the Go standard library. The buffer treats records as opaque;
// variant-specific fields are meaningful only to the serializer. Other
// packages (serialization, transport, client) depend on these types, never
// the other way around.
package contracts
