// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - PipelineService: harvest, extract, build and publish
//   - QueryService: search and detail lookups on the live catalog
//   - SettingsService: defaults, config file and environment overrides
package services
