package failover

import "sync"

// Notifier is the observable backup-mode state. It is owned by the Reader
// and injected wherever the mode needs to be displayed; there is no
// process-wide flag. Transitions are edge-triggered: subscribers see one
// event per actual flip, never repeats of the same state.
type Notifier struct {
	mutex  sync.Mutex
	active bool
	subs   map[chan bool]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[chan bool]struct{}),
	}
}

// Subscribe registers a listener. The current state is delivered
// immediately, then one event per transition. The returned cancel func
// removes the listener and closes its channel.
func (n *Notifier) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 4)

	n.mutex.Lock()
	n.subs[ch] = struct{}{}
	ch <- n.active
	n.mutex.Unlock()

	cancel := func() {
		n.mutex.Lock()
		defer n.mutex.Unlock()
		if _, ok := n.subs[ch]; ok {
			delete(n.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Active reports whether backup mode is currently on.
func (n *Notifier) Active() bool {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.active
}

// set flips the state and broadcasts, but only on an actual change.
func (n *Notifier) set(active bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.active == active {
		return
	}
	n.active = active
	for ch := range n.subs {
		select {
		case ch <- active:
		default:
			// Slow subscriber: drop rather than block the reader.
		}
	}
}
