// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package framework

import (
	"github.com/juju/errors"
)

const (
	// ErrMalformedHandle describes an error that occurs when a handle
	// path string cannot be parsed back into a Handle.
	ErrMalformedHandle = errors.ConstError("malformed handle path")

	// ErrDuplicateHandle describes an error that occurs when two live
	// objects attempt to register the same handle path. This is a
	// programming error: allowing it would corrupt the notebook.
	ErrDuplicateHandle = errors.ConstError("duplicate handle path")

	// ErrInvalidObserver describes an error that occurs when a nil or
	// otherwise unusable observer is passed to Observe.
	ErrInvalidObserver = errors.ConstError("invalid observer")

	// ErrUnknownEventKind describes an error that occurs when an event
	// kind does not resolve to any event defined on the target object.
	ErrUnknownEventKind = errors.ConstError("unknown event kind")
)
