// Package domain holds the catalog's core types: raw harvested documents,
// normalised records, search summaries and the errors shared by every layer.
// It has no dependencies on adapters.
package domain
