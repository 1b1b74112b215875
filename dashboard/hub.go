package dashboard

import "github.com/ivanpozdin/patchsim/patch"

const subscriberBuffer = 16

// hub fans one producer's entries out to any number of subscribers, each
// with its own bounded queue so one slow client cannot stall another.
type hub struct {
	register   chan chan patch.OutputEntry
	unregister chan chan patch.OutputEntry
	publish    chan patch.OutputEntry
	done       chan struct{}
}

func newHub() *hub {
	return &hub{
		register:   make(chan chan patch.OutputEntry),
		unregister: make(chan chan patch.OutputEntry),
		publish:    make(chan patch.OutputEntry),
		done:       make(chan struct{}),
	}
}

// run is the hub's single goroutine owning the subscriber set; it exits
// when done is closed.
func (h *hub) run() {
	subscribers := make(map[chan patch.OutputEntry]struct{})
	for {
		select {
		case <-h.done:
			for sub := range subscribers {
				close(sub)
			}
			return
		case sub := <-h.register:
			subscribers[sub] = struct{}{}
		case sub := <-h.unregister:
			if _, ok := subscribers[sub]; ok {
				delete(subscribers, sub)
				close(sub)
			}
		case entry := <-h.publish:
			for sub := range subscribers {
				select {
				case sub <- entry:
				default:
					// subscriber's queue is full; drop rather than block the hub.
				}
			}
		}
	}
}

func (h *hub) subscribe() chan patch.OutputEntry {
	sub := make(chan patch.OutputEntry, subscriberBuffer)
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub)
	}
	return sub
}

func (h *hub) unsubscribe(sub chan patch.OutputEntry) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

func (h *hub) Publish(entry patch.OutputEntry) {
	select {
	case h.publish <- entry:
	case <-h.done:
	}
}

func (h *hub) Close() {
	close(h.done)
}
