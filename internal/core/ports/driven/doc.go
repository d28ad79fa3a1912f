// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Harvester: Walks the remote registry and streams raw documents
//   - Extractor: Normalises one raw document into a record
//   - StagingStore: Run-scoped durable storage for raw documents
//   - CatalogPublisher: Builds shadow catalogs and publishes them atomically
//   - CatalogSource: Hands out read handles on the published catalog
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
