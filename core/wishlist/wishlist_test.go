package wishlist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/runwayshop/runway/core/product"
)

func p(id int, name string) product.Product {
	return product.Product{ID: id, Name: name, Price: 100}
}

func TestAddDeduplicatesAndPrepends(t *testing.T) {
	l := New()

	l, changed := l.Add(p(1, "Shoes"))
	if !changed || l.Count() != 1 {
		t.Fatalf("first add: changed=%v count=%d", changed, l.Count())
	}

	l, changed = l.Add(p(2, "Phone"))
	if !changed {
		t.Fatal("second add should change the list")
	}
	if l.Items[0].ID != 2 {
		t.Fatalf("expected newest first, got %+v", l.Items)
	}

	l, changed = l.Add(p(1, "Shoes"))
	if changed || l.Count() != 2 {
		t.Fatalf("duplicate add: changed=%v count=%d", changed, l.Count())
	}
}

func TestRemove(t *testing.T) {
	l := New()
	l, _ = l.Add(p(1, "Shoes"))
	l, _ = l.Add(p(2, "Phone"))

	l, changed := l.Remove(1)
	if !changed || l.Contains(1) {
		t.Fatalf("remove: changed=%v contains=%v", changed, l.Contains(1))
	}

	before := l
	l, changed = l.Remove(99)
	if changed {
		t.Fatal("removing a missing id should be a no-op")
	}
	if diff := cmp.Diff(before, l); diff != "" {
		t.Fatalf("no-op remove changed the list:\n%s", diff)
	}
}

func TestToggle(t *testing.T) {
	l := New()

	l, listed := l.Toggle(p(1, "Shoes"))
	if !listed || !l.Contains(1) {
		t.Fatalf("first toggle should add: listed=%v", listed)
	}

	l, listed = l.Toggle(p(1, "Shoes"))
	if listed || l.Contains(1) {
		t.Fatalf("second toggle should remove: listed=%v", listed)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := New()
	l, _ = l.Add(p(1, "Shoes"))
	l, _ = l.Add(p(2, "Phone"))

	raw, err := Snapshot(l)
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}

	restored, err := Restore(raw)
	if err != nil {
		t.Fatalf("restoring: %v", err)
	}
	if diff := cmp.Diff(l, restored); diff != "" {
		t.Fatalf("round trip differs:\n%s", diff)
	}
}

func TestRestoreCorruptFails(t *testing.T) {
	if _, err := Restore([]byte("{nope")); err == nil {
		t.Fatal("expected an error for a corrupt snapshot")
	}
}
