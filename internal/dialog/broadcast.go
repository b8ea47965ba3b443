package dialog

import "sync"

// broadcaster fans controller events out to websocket subscribers. Slow
// subscribers drop messages rather than stall the sequencer.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan any
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan any)}
}

func (b *broadcaster) Subscribe() (<-chan any, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan any, 64)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

func (b *broadcaster) Publish(msg any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}
