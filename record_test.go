package filemap

import "testing"

func TestRecordCacheSwapSemantics(t *testing.T) {
	cache := newRecordCache[string]()
	first := &record[string]{value: "one", valid: true, sum: [32]byte{1}}
	if prior := cache.remember("k", first); prior != nil {
		t.Fatalf("expected no prior record, got %+v", prior)
	}

	cache.invalidate("k")
	if !first.valid {
		t.Fatal("invalidate mutated a published record")
	}
	current := cache.peek("k")
	if current == nil || current.valid {
		t.Fatalf("expected a stale record after invalidate, got %+v", current)
	}
	if current.value != "one" {
		t.Fatalf("invalidate lost the value: %q", current.value)
	}

	second := &record[string]{value: "two", valid: true, sum: [32]byte{2}}
	prior := cache.remember("k", second)
	if prior == nil || prior.value != "one" {
		t.Fatalf("remember returned wrong prior: %+v", prior)
	}

	removed := cache.forget("k")
	if removed == nil || removed.value != "two" {
		t.Fatalf("forget returned wrong record: %+v", removed)
	}
	if cache.peek("k") != nil {
		t.Fatal("expected empty cache after forget")
	}
	if cache.forget("k") != nil {
		t.Fatal("expected nil prior for a second forget")
	}
}

func TestRecordCacheInvalidateWithoutEntry(t *testing.T) {
	cache := newRecordCache[string]()
	cache.invalidate("missing")
	if cache.peek("missing") != nil {
		t.Fatal("invalidate created a phantom record")
	}
}

func TestRecordCacheReset(t *testing.T) {
	cache := newRecordCache[string]()
	cache.remember("a", &record[string]{value: "x", valid: true})
	cache.remember("b", &record[string]{value: "y", valid: true})
	cache.reset()
	if cache.peek("a") != nil || cache.peek("b") != nil {
		t.Fatal("expected empty cache after reset")
	}
}
