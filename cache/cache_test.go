package cache

import (
	"testing"

	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/document"
)

func TestRegisterAndQuery(t *testing.T) {
	c := New()
	alias := common.NewPartAlias("3001.dat")
	doc := &document.MultipartDocument{}

	c.Register(KindPart, alias, doc)

	h, ok := c.Query(alias)
	if !ok {
		t.Fatal("Query() should find a registered alias")
	}
	defer h.Release()

	if h.Document() != doc {
		t.Fatal("Query() returned a handle to the wrong document")
	}
}

func TestQueryMissingAlias(t *testing.T) {
	c := New()
	_, ok := c.Query(common.NewPartAlias("missing.dat"))
	if ok {
		t.Fatal("Query() should report false for an unregistered alias")
	}
}

func TestQueryPrefersPartsOverPrimitives(t *testing.T) {
	c := New()
	alias := common.NewPartAlias("shared.dat")
	partDoc := &document.MultipartDocument{Body: document.Document{Name: "part"}}
	primDoc := &document.MultipartDocument{Body: document.Document{Name: "primitive"}}

	c.Register(KindPrimitive, alias, primDoc)
	c.Register(KindPart, alias, partDoc)

	h, ok := c.Query(alias)
	if !ok {
		t.Fatal("expected Query to find the alias")
	}
	defer h.Release()
	if h.Document() != partDoc {
		t.Fatal("Query() should prefer the parts partition over primitives")
	}
}

// TestCollectSteadyStateRemovesNothing covers spec.md §8's idempotence
// property: PartCache.collect called repeatedly once steady state is
// reached removes zero entries.
func TestCollectSteadyStateRemovesNothing(t *testing.T) {
	c := New()
	alias := common.NewPartAlias("3001.dat")
	c.Register(KindPart, alias, &document.MultipartDocument{})

	first := c.Collect(CollectPartsAndPrimitives)
	if first == 0 {
		t.Fatal("expected the first collection pass to remove the unreferenced entry")
	}

	second := c.Collect(CollectPartsAndPrimitives)
	if second != 0 {
		t.Fatalf("Collect() at steady state removed %d entries, want 0", second)
	}
}

func TestCollectSkipsLiveHandles(t *testing.T) {
	c := New()
	alias := common.NewPartAlias("3001.dat")
	c.Register(KindPart, alias, &document.MultipartDocument{})

	h, ok := c.Query(alias)
	if !ok {
		t.Fatal("expected Query to succeed")
	}

	removed := c.Collect(CollectPartsAndPrimitives)
	if removed != 0 {
		t.Fatalf("Collect() removed %d entries while a handle was live, want 0", removed)
	}

	h.Release()
	removed = c.Collect(CollectPartsAndPrimitives)
	if removed != 1 {
		t.Fatalf("Collect() after Release removed %d entries, want 1", removed)
	}
}

func TestHandleAcquireIndependentRelease(t *testing.T) {
	c := New()
	alias := common.NewPartAlias("3001.dat")
	c.Register(KindPart, alias, &document.MultipartDocument{})

	h, _ := c.Query(alias)
	h2 := h.Acquire()
	h.Release()

	// h2 still holds a reference; the entry should survive collection.
	if removed := c.Collect(CollectPartsAndPrimitives); removed != 0 {
		t.Fatalf("Collect() removed %d entries while h2 was live, want 0", removed)
	}

	h2.Release()
	if removed := c.Collect(CollectPartsAndPrimitives); removed != 1 {
		t.Fatalf("Collect() after releasing both handles removed %d, want 1", removed)
	}
}
