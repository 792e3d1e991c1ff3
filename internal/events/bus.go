package events

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// CourseRulesAccepted is emitted after a marathon activation reveals whether
// the user accepted the course terms. It is a one-way notification: the
// emitter never waits for, nor learns about, its consumers.
type CourseRulesAccepted struct {
	CourseID string
	Accepted bool
}

// Bus is a minimal in-process pub/sub for cross-component notifications.
// Publishing never blocks: a subscriber with a full buffer misses the event
// (and a warning is logged), which is acceptable for advisory notifications.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]chan CourseRulesAccepted
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]chan CourseRulesAccepted),
	}
}

func (b *Bus) SubscribeRulesAccepted(name string, buffer int) <-chan CourseRulesAccepted {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan CourseRulesAccepted, buffer)
	b.subs[name] = ch
	return ch
}

func (b *Bus) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[name]; ok {
		close(ch)
		delete(b.subs, name)
	}
}

func (b *Bus) PublishRulesAccepted(courseID string, accepted bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ev := CourseRulesAccepted{CourseID: courseID, Accepted: accepted}
	for name, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Warnf("events bus: subscriber [%s] full, rules accepted event dropped", name)
		}
	}
}
