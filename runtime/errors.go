package runtime

import "errors"

// ErrClosed is returned by Runtime methods called after Shutdown.
var ErrClosed = errors.New("runtime: closed")
