// Package pagebuf provides a fixed-capacity double-ended buffer used as a
// sliding window over an unbounded paginated stream. Inserting at one end
// evicts from the opposite end once the buffer is full; evicted items are
// always returned to the caller so derived state (for example a presentation
// index) can be reconciled rather than silently drifting.
package pagebuf

import "fmt"

// Deque is a bounded double-ended buffer. The zero value is not usable;
// construct with New. Deque is not safe for concurrent use.
type Deque[T any] struct {
	capacity int
	items    []T
}

// New creates an empty Deque holding at most capacity items.
func New[T any](capacity int) (*Deque[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("pagebuf: capacity must be >= 1, got %d", capacity)
	}
	return &Deque[T]{capacity: capacity}, nil
}

// Len returns the number of buffered items. Len never exceeds Cap.
func (d *Deque[T]) Len() int { return len(d.items) }

// Cap returns the fixed capacity the Deque was created with.
func (d *Deque[T]) Cap() int { return d.capacity }

// IsEmpty reports whether the Deque holds no items.
func (d *Deque[T]) IsEmpty() bool { return len(d.items) == 0 }

// Front returns the first item, if any.
func (d *Deque[T]) Front() (T, bool) {
	if len(d.items) == 0 {
		var zero T
		return zero, false
	}
	return d.items[0], true
}

// Back returns the last item, if any.
func (d *Deque[T]) Back() (T, bool) {
	if len(d.items) == 0 {
		var zero T
		return zero, false
	}
	return d.items[len(d.items)-1], true
}

// At returns the item at position i, counting from the front.
func (d *Deque[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(d.items) {
		var zero T
		return zero, false
	}
	return d.items[i], true
}

// InsertFront prepends item, evicting from the back until there is room.
// The evicted items are returned in eviction order (back-most first).
func (d *Deque[T]) InsertFront(item T) []T {
	evicted := d.evict(d.popBack)
	d.items = append([]T{item}, d.items...)
	return evicted
}

// InsertBack appends item, evicting from the front until there is room.
// The evicted items are returned in eviction order (front-most first).
func (d *Deque[T]) InsertBack(item T) []T {
	evicted := d.evict(d.popFront)
	d.items = append(d.items, item)
	return evicted
}

// PopFront removes and returns the first item, if any.
func (d *Deque[T]) PopFront() (T, bool) {
	if len(d.items) == 0 {
		var zero T
		return zero, false
	}
	return d.popFront(), true
}

// PopBack removes and returns the last item, if any.
func (d *Deque[T]) PopBack() (T, bool) {
	if len(d.items) == 0 {
		var zero T
		return zero, false
	}
	return d.popBack(), true
}

// Clear empties the Deque. Capacity is unchanged.
func (d *Deque[T]) Clear() {
	d.items = nil
}

// evict makes room for one more item by repeatedly calling pop.
func (d *Deque[T]) evict(pop func() T) []T {
	if len(d.items) < d.capacity {
		return nil
	}
	n := len(d.items) - d.capacity + 1
	evicted := make([]T, 0, n)
	for i := 0; i < n; i++ {
		evicted = append(evicted, pop())
	}
	return evicted
}

func (d *Deque[T]) popFront() T {
	item := d.items[0]
	d.items = d.items[1:]
	return item
}

func (d *Deque[T]) popBack() T {
	item := d.items[len(d.items)-1]
	d.items = d.items[:len(d.items)-1]
	return item
}
