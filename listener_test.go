package filemap

import (
	"reflect"
	"testing"
)

func TestListenerFuncsSkipsNilCallbacks(t *testing.T) {
	funcs := ListenerFuncs[note]{}
	funcs.Insert("k", note{})
	funcs.Update("k", note{}, note{})
	funcs.Remove("k", note{})
}

func TestListenerFuncsForwards(t *testing.T) {
	var inserted, updated, removed int
	funcs := ListenerFuncs[note]{
		OnInsert: func(string, note) { inserted++ },
		OnUpdate: func(string, note, note) { updated++ },
		OnRemove: func(string, note) { removed++ },
	}
	funcs.Insert("k", note{})
	funcs.Update("k", note{}, note{})
	funcs.Remove("k", note{})
	if inserted != 1 || updated != 1 || removed != 1 {
		t.Fatalf("callbacks fired %d/%d/%d times", inserted, updated, removed)
	}
}

func TestListenerSetDispatchOrder(t *testing.T) {
	var set listenerSet[note]
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		set.register(ListenerFuncs[note]{
			OnInsert: func(string, note) { order = append(order, name) },
		})
	}
	for _, listener := range set.snapshot() {
		listener.Insert("k", note{})
	}
	if !reflect.DeepEqual(order, []string{"a", "b", "c"}) {
		t.Fatalf("dispatch order = %v", order)
	}
}

func TestListenerSetDrop(t *testing.T) {
	var set listenerSet[note]
	first := set.register(ListenerFuncs[note]{})
	set.register(ListenerFuncs[note]{})

	first.Unregister()
	first.Unregister()
	if got := len(set.snapshot()); got != 1 {
		t.Fatalf("snapshot length = %d after unregister, want 1", got)
	}

	if registration := set.register(nil); registration == nil {
		t.Fatal("nil listener should still yield a registration")
	} else {
		registration.Unregister()
	}
	if got := len(set.snapshot()); got != 1 {
		t.Fatalf("nil listener changed the set: length = %d", got)
	}
}
