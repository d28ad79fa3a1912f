// Package connectors holds the Harvester implementations. Each one knows
// how to walk a single kind of metadata source: csw talks to a CSW 2.0.2
// registry and filesystem reads exported ISO 19139 files from disk.
package connectors
