package utils

import (
	"io"
)

// maxDrain caps how much of an unread response body is discarded before close.
const maxDrain = 64 << 10

// DrainClose discards what is left of an HTTP response body, then closes it,
// so the underlying connection can go back to the pool.
func DrainClose(body io.ReadCloser) {
	_, _ = io.CopyN(io.Discard, body, maxDrain)
	_ = body.Close()
}
