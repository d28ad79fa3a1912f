// Package staging holds the raw document staging backends.
//
// Staged documents are keyed by record UUID. Each harvest writes into its own
// run scope; committing a run promotes its documents over the committed set,
// so the last write for a UUID wins and an aborted run leaves nothing behind.
//
// Backends:
//
//   - file: a local directory (raw/<uuid>.xml)
//   - s3: an S3 bucket or S3-compatible store (<prefix>/raw/<uuid>.xml)
package staging

import (
	"net/url"
	"strings"
)

// Extension is the file extension of staged documents.
const Extension = ".xml"

// ObjectName maps a UUID to a safe file or object name. Names never contain
// a slash and never start with a dot.
func ObjectName(uuid string) string {
	name := url.PathEscape(uuid)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return name + Extension
}

// UUIDFromName reverses ObjectName. ok is false for names that are not
// staged documents.
func UUIDFromName(name string) (uuid string, ok bool) {
	if !strings.HasSuffix(name, Extension) || strings.HasPrefix(name, ".") {
		return "", false
	}
	id, err := url.PathUnescape(strings.TrimSuffix(name, Extension))
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}
