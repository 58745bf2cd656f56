// Package fetch provides remote-origin fetchers for the asset cache:
// one speaking HTTP and one reading from an S3 bucket. Both implement
// cache.Fetcher. The cache treats every failure the same way, so the
// fetchers only need to report what happened, not recover from it.
package fetch

import "errors"

// Exported errors
var (
	ErrNotFound       = errors.New("asset not found on origin")
	ErrUnexpectedResp = errors.New("unexpected response from origin")
)
