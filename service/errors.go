// Package service implements the encrypted storage engine: ingestion,
// retrieval, lifecycle transitions and quota accounting. Handlers stay
// thin and map the sentinel errors below onto HTTP responses.
package service

import "errors"

var (
	ErrInvalidInput = errors.New("no file data provided")
	ErrNotFound     = errors.New("file not found")

	// ErrPreconditionFailed means a lifecycle transition was attempted
	// from the wrong state, e.g. restoring a file that isn't deleted or
	// purging one that hasn't been soft-deleted first
	ErrPreconditionFailed = errors.New("file is not in the expected state")

	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrQuotaExceeded      = errors.New("not enough space")
)
