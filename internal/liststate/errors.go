package liststate

import "errors"

var (
	// ErrStale is returned by a fetch whose response was superseded by a newer request.
	ErrStale = errors.New("stale list response dropped")
	// ErrClosed is returned once the view has been torn down.
	ErrClosed = errors.New("list view closed")

	ErrDeleteUnsupported = errors.New("delete is not supported for this list")
	ErrDeleteBusy        = errors.New("another delete is pending")
	ErrDeleteInProgress  = errors.New("delete in progress")
	ErrNotConfirming     = errors.New("no delete awaiting confirmation")
	ErrRecordNotFound    = errors.New("record is not on the current page")
)

// DefaultFetchError is shown when a failed fetch carries no message.
const DefaultFetchError = "failed to load data"

func errorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
