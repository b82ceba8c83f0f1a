// Package utils provides loose-type conversion helpers.
//
// Import payloads arrive as loosely-typed JSON objects produced by several
// generations of exporters: numbers appear as strings, booleans as "1", and
// field values as whatever the legacy tool emitted. These helpers normalize
// such values with explicit type switching instead of panicking assertions.
package utils
