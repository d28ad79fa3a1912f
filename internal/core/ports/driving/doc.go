// Package driving defines interfaces that external actors (CLI, HTTP, MCP) use
// to interact with core services. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
//   - Pipeline: harvest, rebuild and rollback
//   - QueryService: search and record detail
//   - SettingsService: effective configuration
//
// Implementations of these interfaces live in internal/core/services.
package driving
