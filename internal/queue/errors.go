package queue

import "errors"

// ErrClosed is returned by Send once the queue has been closed, and by Receive
// once the queue has been closed and every pending message has been consumed.
var ErrClosed = errors.New("queue is closed")
