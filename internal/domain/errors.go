package domain

import "errors"

var (
	// ErrMalformedRecord means a corpus line did not have exactly three fields.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnreadableSource means a corpus or snapshot could not be opened or read.
	ErrUnreadableSource = errors.New("unreadable source")
	// ErrCorruptSnapshot means a persisted index could not be restored.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	// ErrEmptyQuery ends an interactive serving session.
	ErrEmptyQuery = errors.New("empty query")
	// ErrFinalized is returned when a finalized builder is reused.
	ErrFinalized = errors.New("index builder already finalized")
)
