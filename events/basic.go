package events

import (
	"errors"
	"reflect"
	"sync"
)

const subscriptionBufferSize = 16

// basicBus is a type-based event delivery system.
type basicBus struct {
	lk   sync.Mutex
	subs map[reflect.Type][]*sub
}

var _ Bus = (*basicBus)(nil)

// NewBus returns a basic event bus.
func NewBus() Bus {
	return &basicBus{
		subs: make(map[reflect.Type][]*sub),
	}
}

func (b *basicBus) Emit(event interface{}) {
	b.lk.Lock()
	defer b.lk.Unlock()

	for _, s := range b.subs[reflect.TypeOf(event)] {
		s.ch <- event
	}
}

func (b *basicBus) Subscribe(eventType interface{}) (Subscription, error) {
	var typs []reflect.Type
	switch t := eventType.(type) {
	case []interface{}:
		for _, e := range t {
			typs = append(typs, reflect.TypeOf(e))
		}
	default:
		typs = append(typs, reflect.TypeOf(eventType))
	}
	for _, typ := range typs {
		if typ == nil || typ.Kind() != reflect.Ptr {
			return nil, errors.New("subscribe requires a pointer to an event type")
		}
	}

	s := &sub{
		ch:   make(chan interface{}, subscriptionBufferSize),
		typs: typs,
		drop: b.dropSubscriber,
	}

	b.lk.Lock()
	defer b.lk.Unlock()
	for _, typ := range typs {
		b.subs[typ] = append(b.subs[typ], s)
	}
	return s, nil
}

func (b *basicBus) dropSubscriber(s *sub) {
	b.lk.Lock()
	defer b.lk.Unlock()

	for _, typ := range s.typs {
		subs := b.subs[typ]
		for i, existing := range subs {
			if existing == s {
				b.subs[typ] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

type sub struct {
	ch        chan interface{}
	typs      []reflect.Type
	drop      func(*sub)
	closeOnce sync.Once
}

func (s *sub) Out() <-chan interface{} {
	return s.ch
}

func (s *sub) Close() error {
	s.closeOnce.Do(func() {
		// Drain so a publisher blocked on this channel, holding the bus
		// lock, can proceed and release it for dropSubscriber.
		done := make(chan struct{})
		go func() {
			for range s.ch {
			}
			close(done)
		}()
		s.drop(s)
		close(s.ch)
		<-done
	})
	return nil
}
