package store

import (
	"context"
	"testing"
)

func TestFileRoundTrip(t *testing.T) {
	st, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("creating file store: %v", err)
	}

	ctx := context.Background()

	if _, ok, err := st.Load(ctx, "cart:missing"); err != nil || ok {
		t.Fatalf("loading missing key: ok=%v err=%v", ok, err)
	}

	want := []byte(`{"cartId":"abc"}`)
	if err := st.Save(ctx, "cart:abc", want); err != nil {
		t.Fatalf("saving: %v", err)
	}

	got, ok, err := st.Load(ctx, "cart:abc")
	if err != nil || !ok {
		t.Fatalf("loading: ok=%v err=%v", ok, err)
	}
	if string(got) != string(want) {
		t.Fatalf("loaded %q, want %q", got, want)
	}

	// Overwrites replace the whole snapshot.
	want = []byte(`{"cartId":"def"}`)
	if err := st.Save(ctx, "cart:abc", want); err != nil {
		t.Fatalf("overwriting: %v", err)
	}
	got, _, _ = st.Load(ctx, "cart:abc")
	if string(got) != string(want) {
		t.Fatalf("loaded %q after overwrite, want %q", got, want)
	}

	if err := st.Delete(ctx, "cart:abc"); err != nil {
		t.Fatalf("deleting: %v", err)
	}
	if _, ok, _ := st.Load(ctx, "cart:abc"); ok {
		t.Fatal("key still present after delete")
	}

	// Deleting twice is a no-op.
	if err := st.Delete(ctx, "cart:abc"); err != nil {
		t.Fatalf("deleting missing key: %v", err)
	}
}
