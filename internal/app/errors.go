package app

import "errors"

// ErrQuit signals a normal exit from the event loop.
var ErrQuit = errors.New("quit requested")
