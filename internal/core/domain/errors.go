package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Harvest Errors.

	// ErrTransientFetch indicates a page fetch failed in a way that may succeed
	// on retry (network failure, timeout, non-2xx status).
	ErrTransientFetch = errors.New("transient fetch failure")

	// ErrMalformedResponse indicates the registry answered with a body that
	// could not be understood as a result page.
	ErrMalformedResponse = errors.New("malformed registry response")

	// ErrHarvestAborted indicates the harvest run was cancelled before completion.
	ErrHarvestAborted = errors.New("harvest aborted")

	// Extraction Errors.

	// ErrMalformedRecord indicates a record lacks its mandatory identity.
	// The record is dropped; the run continues.
	ErrMalformedRecord = errors.New("malformed record")

	// Catalog Errors.

	// ErrPublishConflict indicates another ingest run holds the publish lock.
	ErrPublishConflict = errors.New("publish conflict")

	// ErrNoCatalog indicates no published catalog exists yet.
	ErrNoCatalog = errors.New("no published catalog")

	// ErrNoBackup indicates there is no previous catalog generation to restore.
	ErrNoBackup = errors.New("no backup catalog")
)
