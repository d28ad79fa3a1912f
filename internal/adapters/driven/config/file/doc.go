// Package file provides the TOML configuration store.
//
// Values are addressed with dot-notation keys ("harvest.page_size") and are
// written back as nested TOML tables.
package file
