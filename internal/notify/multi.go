package notify

import "github.com/ariefcatur/go-realtime-auctions/internal/lifecycle"

// Multi fans every notification out to each sink in order.
type Multi []lifecycle.Notifier

func (m Multi) Pending(n lifecycle.Note) {
	for _, s := range m {
		s.Pending(n)
	}
}

func (m Multi) Success(n lifecycle.Note) {
	for _, s := range m {
		s.Success(n)
	}
}

func (m Multi) Error(n lifecycle.Note, message string) {
	for _, s := range m {
		s.Error(n, message)
	}
}
