// Package handle maps opaque integer handles to owned objects.
//
// A Handle packs a slot index and a generation. Releasing a handle bumps the
// slot's generation, so a stale copy of the handle can never reach whatever
// later reuses the slot.
package handle

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidHandle is returned for the null handle and for handles that are
// unknown or already released.
var ErrInvalidHandle = errors.New("invalid handle")

// Handle is index+1 in the high 32 bits and the generation in the low 32.
// Zero is the null handle.
type Handle uint64

// Null is the handle that never refers to anything.
const Null Handle = 0

func makeHandle(index int, gen uint32) Handle {
	return Handle(uint64(index+1)<<32 | uint64(gen))
}

func (h Handle) split() (index int, gen uint32, ok bool) {
	hi := uint64(h) >> 32
	if hi == 0 {
		return 0, 0, false
	}
	return int(hi - 1), uint32(h), true
}

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool {
	return h == Null
}

// String formats h as "index:generation".
func (h Handle) String() string {
	index, gen, ok := h.split()
	if !ok {
		return "null"
	}
	return fmt.Sprintf("%d:%d", index, gen)
}

type slot[T any] struct {
	value *T
	gen   uint32
}

// Registry owns objects of type T and hands out handles to them.
// It is safe for concurrent use.
type Registry[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
	free  []int
	live  int
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Insert stores v and returns its handle.
func (r *Registry[T]) Insert(v *T) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.live++
	if n := len(r.free); n > 0 {
		index := r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[index].value = v
		return makeHandle(index, r.slots[index].gen)
	}
	// Generations start at 1 so no live handle has a zero low half.
	r.slots = append(r.slots, slot[T]{value: v, gen: 1})
	return makeHandle(len(r.slots)-1, 1)
}

// Get returns the object behind h.
func (r *Registry[T]) Get(h Handle) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.lookup(h)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
	return s.value, nil
}

// Release drops the object behind h. Releasing the null handle or a handle
// that is already released does nothing.
func (r *Registry[T]) Release(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(h)
	if !ok {
		return false
	}
	index, _, _ := h.split()
	s.value = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	r.free = append(r.free, index)
	r.live--
	return true
}

// Len returns the number of live objects.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live
}

// lookup returns the live slot for h. Callers hold r.mu.
func (r *Registry[T]) lookup(h Handle) (*slot[T], bool) {
	index, gen, ok := h.split()
	if !ok || index >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[index]
	if s.value == nil || s.gen != gen {
		return nil, false
	}
	return s, true
}
