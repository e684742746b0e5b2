package stream

import "sync"

// HandlerFunc receives every decoded Message in arrival order.
type HandlerFunc func(Message)

// handlerSlot holds the current handler. The run loop reads it for every
// frame, so a replacement takes effect on the next message without a
// reconnect.
type handlerSlot struct {
	mu sync.RWMutex
	fn HandlerFunc
}

func (s *handlerSlot) Store(fn HandlerFunc) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

func (s *handlerSlot) Load() HandlerFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fn
}
