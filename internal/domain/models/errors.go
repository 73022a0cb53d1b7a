package models

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable indicates the sync destination is unreachable, unauthenticated or unconfigured.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrMalformedData indicates a single record could not be decoded.
	ErrMalformedData = errors.New("malformed data")
	// ErrValidation indicates caller input violates a precondition.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a lookup by id or barcode yielded nothing.
	ErrNotFound = errors.New("not found")
	// ErrSubmitInProgress indicates another submit is still in flight.
	ErrSubmitInProgress = errors.New("submit already in progress")
)

// ErrInvalidTransition indicates an illegal purchase order status change.
var ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrValidation)

// ErrNonAtomicWrite indicates a full-replace write cleared the destination but
// could not rewrite it. The destination may now hold fewer rows than before.
var ErrNonAtomicWrite = fmt.Errorf("%w: destination cleared but not rewritten", ErrBackendUnavailable)
