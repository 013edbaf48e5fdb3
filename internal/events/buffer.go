package events

import "log"

// pendingMsg is a serialized MQTT message held for replay after reconnect.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// pendingQueue holds messages while the broker is unreachable. The daemon
// emits a handful of lifecycle events over its whole life, so the queue is
// tiny and drops the oldest entry on overflow. Not safe for concurrent
// use — caller must synchronize.
type pendingQueue struct {
	msgs []pendingMsg
	max  int
}

func newPendingQueue(max int) *pendingQueue {
	return &pendingQueue{max: max}
}

func (q *pendingQueue) push(msg pendingMsg) {
	if len(q.msgs) == q.max {
		log.Printf("events: %d messages pending, dropping oldest", q.max)
		q.msgs = q.msgs[1:]
	}
	q.msgs = append(q.msgs, msg)
}

// drain returns all pending messages in arrival order and empties the queue.
func (q *pendingQueue) drain() []pendingMsg {
	msgs := q.msgs
	q.msgs = nil
	return msgs
}

func (q *pendingQueue) len() int {
	return len(q.msgs)
}
