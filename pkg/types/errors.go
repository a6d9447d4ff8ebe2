// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error categories. Stages wrap these with %w so callers can decide between
// aborting the run, skipping a candidate, or failing one document.
var (
	// ErrConfig is a missing or malformed setting. Fatal before any work.
	ErrConfig = errors.New("configuration error")

	// ErrDiscovery is an unreadable or unparseable library descriptor.
	// The candidate is skipped.
	ErrDiscovery = errors.New("discovery error")

	// ErrPageTransform is a malformed source page. The document fails.
	ErrPageTransform = errors.New("page transform error")

	// ErrWrite is a failed descriptor, output, or log write. The document
	// fails and is not recorded in the conversion log.
	ErrWrite = errors.New("write error")

	// ErrSideEffect is a failed optional side effect such as the service
	// restart. It is logged and never aborts the run.
	ErrSideEffect = errors.New("side effect error")
)
