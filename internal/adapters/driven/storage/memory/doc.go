// Package memory provides in-memory implementations of driven ports.
// They back tests and one-off runs that should leave nothing on disk.
package memory
