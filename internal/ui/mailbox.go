package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// mailbox queues presenter messages for the program without ever blocking
// or dropping. A result set replaces one still waiting at the tail of the
// queue; show, hide and notices are always delivered in order.
type mailbox struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (b *mailbox) put(msg tea.Msg) {
	b.mu.Lock()
	if _, ok := msg.(resultsMsg); ok && len(b.queue) > 0 {
		if _, tail := b.queue[len(b.queue)-1].(resultsMsg); tail {
			b.queue[len(b.queue)-1] = msg
			b.mu.Unlock()
			return
		}
	}
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// ready fires after put when messages are waiting.
func (b *mailbox) ready() <-chan struct{} {
	return b.wake
}

// take removes and returns everything queued, oldest first.
func (b *mailbox) take() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queue
	b.queue = nil
	return q
}
