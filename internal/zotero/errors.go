package zotero

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies every failure that leaves this package.
type Kind int

const (
	// KindTransport covers network failures, unexpected statuses and malformed
	// responses. It is the zero value so unclassified errors land here.
	KindTransport Kind = iota
	KindNotFound
	KindNotSupported
	KindRateLimited
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindNotSupported:
		return "not_supported"
	case KindRateLimited:
		return "rate_limited"
	case KindCanceled:
		return "canceled"
	default:
		return "transport_failure"
	}
}

var (
	// ErrNoAttachment means the item exists but has nothing to extract text from.
	ErrNoAttachment = errors.New("item has no attachment")
	// ErrNoFulltext means the attachment exists but Zotero has not indexed its text.
	ErrNoFulltext = errors.New("attachment has no indexed full text")
	// ErrFulltextUnavailable means the running backend cannot serve full text at all.
	ErrFulltextUnavailable = errors.New("full text is not available from this Zotero API")
	// ErrMalformedResponse means the backend answered with something other than the documented JSON.
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is the typed failure returned by every Backend operation.
type Error struct {
	Kind       Kind
	Op         string // "search", "item", "fulltext", "collections"
	Key        string // Item or collection key, when the operation has one
	Status     int    // HTTP status, 0 when no response was received
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("zotero ")
	b.WriteString(e.Op)
	if e.Key != "" {
		fmt.Fprintf(&b, " %s", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err. Context errors are Canceled; anything that
// is not an *Error is a transport failure.
func KindOf(err error) Kind {
	var zerr *Error
	if errors.As(err, &zerr) {
		return zerr.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	return KindTransport
}

// IsKind reports whether err is classified as k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// RetryAfter returns the server-suggested delay carried by a RateLimited error.
func RetryAfter(err error) time.Duration {
	var zerr *Error
	if errors.As(err, &zerr) {
		return zerr.RetryAfter
	}
	return 0
}
