package handle

import (
	"errors"
	"sync"
	"testing"
)

type item struct{ n int }

func TestRegistry_InsertGet(t *testing.T) {
	r := NewRegistry[item]()
	a := r.Insert(&item{1})
	b := r.Insert(&item{2})

	if a.IsNull() || b.IsNull() || a == b {
		t.Fatalf("handles = %s, %s", a, b)
	}
	got, err := r.Get(b)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.n != 2 {
		t.Errorf("Get().n = %d, want 2", got.n)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRegistry_InvalidHandles(t *testing.T) {
	r := NewRegistry[item]()
	h := r.Insert(&item{1})

	tests := []struct {
		name string
		h    Handle
	}{
		{"null", Null},
		{"unknown index", makeHandle(7, 1)},
		{"wrong generation", makeHandle(0, 9)},
		{"zero high half", Handle(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Get(tt.h); !errors.Is(err, ErrInvalidHandle) {
				t.Errorf("Get(%s) error = %v, want ErrInvalidHandle", tt.h, err)
			}
		})
	}
	if _, err := r.Get(h); err != nil {
		t.Errorf("Get(live) error: %v", err)
	}
}

func TestRegistry_Release(t *testing.T) {
	r := NewRegistry[item]()
	h := r.Insert(&item{1})

	if !r.Release(h) {
		t.Error("first Release() = false, want true")
	}
	if r.Release(h) {
		t.Error("second Release() = true, want false")
	}
	if r.Release(Null) {
		t.Error("Release(Null) = true, want false")
	}
	if _, err := r.Get(h); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Get(released) error = %v, want ErrInvalidHandle", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistry_StaleHandleAfterReuse(t *testing.T) {
	r := NewRegistry[item]()
	old := r.Insert(&item{1})
	r.Release(old)

	reused := r.Insert(&item{2})
	if reused == old {
		t.Fatal("reused slot returned the stale handle")
	}
	oldIndex, _, _ := old.split()
	newIndex, _, _ := reused.split()
	if oldIndex != newIndex {
		t.Errorf("slot not reused: %d vs %d", oldIndex, newIndex)
	}
	if _, err := r.Get(old); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Get(stale) error = %v, want ErrInvalidHandle", err)
	}
	if r.Release(old) {
		t.Error("Release(stale) should not release the new object")
	}
	if got, _ := r.Get(reused); got == nil || got.n != 2 {
		t.Error("new object should survive a stale release")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry[item]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h := r.Insert(&item{j})
				if got, err := r.Get(h); err != nil || got.n != j {
					t.Errorf("Get() = %v, %v", got, err)
					return
				}
				r.Release(h)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestHandle_String(t *testing.T) {
	if got := Null.String(); got != "null" {
		t.Errorf("Null.String() = %q", got)
	}
	if got := makeHandle(3, 2).String(); got != "3:2" {
		t.Errorf("String() = %q, want 3:2", got)
	}
}
