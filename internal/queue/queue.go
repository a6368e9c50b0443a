package queue

import (
	"sync"
)

// Queue is an unbounded FIFO of Messages with a blocking Receive.
//
// Any number of goroutines may Send. Any number of goroutines may Receive, but
// the queue hands each message to exactly one of them: receivers are serialized
// on the queue's mutex, which is held only for the duration of a single dequeue
// attempt.
type Queue struct {

	// mu guards items and closed. It is the sole serialization point between
	// receivers competing for the next message.
	mu *sync.Mutex

	// cond is signalled whenever a message is appended and broadcast when the
	// queue is closed, so that parked receivers can re-check their condition.
	cond *sync.Cond

	// items holds pending messages in insertion order. items[0] is the next
	// message to be received.
	items []Message

	// closed indicates that the producer side has been dropped. A closed queue
	// rejects Send but still delivers whatever is pending to Receive.
	closed bool
}

//region Implementation

// Send appends msg to the back of the queue and wakes one parked receiver.
// Send never blocks on consumers. It returns ErrClosed if Close has already
// been called.
func (q *Queue) Send(msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.items = append(q.items, msg)
	q.cond.Signal()

	return nil
}

// Receive blocks until a message is available, then removes it from the front
// of the queue and returns it. If the queue is closed and empty, Receive
// returns ErrClosed.
func (q *Queue) Receive() (Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return Message{}, ErrClosed
		}
		q.cond.Wait()
	}

	msg := q.items[0]

	// Clear the slot so the job can be collected once it has run.
	q.items[0] = Message{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}

	return msg, nil
}

// Close drops the producer side of the queue. Further calls to Send fail, and
// every receiver currently parked in Receive is woken. Messages already queued
// are still delivered. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true

	// Wake up all waiting receivers so they can observe the closed state.
	q.cond.Broadcast()
}

// Len returns the number of messages waiting to be received.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

//endregion

//region Constructor

// New returns an empty, open Queue.
func New() *Queue {
	mu := &sync.Mutex{}
	return &Queue{
		mu:   mu,
		cond: sync.NewCond(mu),
	}
}

//endregion
