package mqtt

// queuedMsg is a serialized MQTT message held for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog is a fixed-capacity FIFO of messages published while disconnected.
// When full the oldest message is overwritten. Not safe for concurrent use.
type backlog struct {
	buf     []queuedMsg
	head    int // next write position
	count   int
	dropped int // messages overwritten since last drain
}

func newBacklog(capacity int) *backlog {
	if capacity < 1 {
		capacity = 1
	}
	return &backlog{buf: make([]queuedMsg, capacity)}
}

// push queues msg and reports whether an older message was overwritten.
func (b *backlog) push(msg queuedMsg) bool {
	full := b.count == len(b.buf)
	b.buf[b.head] = msg
	b.head = (b.head + 1) % len(b.buf)
	if full {
		b.dropped++
		return true
	}
	b.count++
	return false
}

// drain returns queued messages oldest first and empties the backlog.
func (b *backlog) drain() []queuedMsg {
	if b.count == 0 {
		return nil
	}

	out := make([]queuedMsg, b.count)
	start := (b.head - b.count + len(b.buf)) % len(b.buf)
	for i := range out {
		out[i] = b.buf[(start+i)%len(b.buf)]
	}

	b.count = 0
	b.head = 0
	b.dropped = 0
	return out
}

func (b *backlog) len() int {
	return b.count
}
