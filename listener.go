package filemap

import (
	"slices"
	"sync"
)

// Listener receives change notifications observed by the watch loop.
//
// Callbacks run on the watch goroutine, one at a time, in the order the
// operating system delivered the underlying events. Blocking inside a
// callback stalls further notifications. previous is the zero value of V
// when no prior value was cached for the key.
type Listener[V any] interface {
	Insert(key string, value V)
	Update(key string, previous, value V)
	Remove(key string, previous V)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil
// functions are skipped.
type ListenerFuncs[V any] struct {
	OnInsert func(key string, value V)
	OnUpdate func(key string, previous, value V)
	OnRemove func(key string, previous V)
}

func (funcs ListenerFuncs[V]) Insert(key string, value V) {
	if funcs.OnInsert != nil {
		funcs.OnInsert(key, value)
	}
}

func (funcs ListenerFuncs[V]) Update(key string, previous, value V) {
	if funcs.OnUpdate != nil {
		funcs.OnUpdate(key, previous, value)
	}
}

func (funcs ListenerFuncs[V]) Remove(key string, previous V) {
	if funcs.OnRemove != nil {
		funcs.OnRemove(key, previous)
	}
}

// Registration identifies a registered listener.
type Registration struct {
	once       sync.Once
	unregister func()
}

// Unregister removes the listener. Safe to call more than once; events
// already being dispatched may still reach the listener.
func (registration *Registration) Unregister() {
	if registration == nil {
		return
	}
	registration.once.Do(registration.unregister)
}

// listenerSet holds registered listeners. Dispatch works from a snapshot, so
// callbacks can register and unregister freely.
type listenerSet[V any] struct {
	mutex   sync.Mutex
	nextID  uint64
	entries map[uint64]Listener[V]
}

func (set *listenerSet[V]) register(listener Listener[V]) *Registration {
	if listener == nil {
		return &Registration{unregister: func() {}}
	}
	set.mutex.Lock()
	defer set.mutex.Unlock()
	if set.entries == nil {
		set.entries = make(map[uint64]Listener[V])
	}
	id := set.nextID
	set.nextID++
	set.entries[id] = listener
	return &Registration{unregister: func() { set.drop(id) }}
}

func (set *listenerSet[V]) drop(id uint64) {
	set.mutex.Lock()
	defer set.mutex.Unlock()
	delete(set.entries, id)
}

// snapshot returns the current listeners in registration order.
func (set *listenerSet[V]) snapshot() []Listener[V] {
	set.mutex.Lock()
	defer set.mutex.Unlock()
	if len(set.entries) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(set.entries))
	for id := range set.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener[V], 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, set.entries[id])
	}
	return listeners
}
