package lantern

// registry maps monotonically increasing integer ids to owned resources.
// Lookups of unknown or disposed ids report ok=false instead of failing.
// Only the render context mutates a registry, so no locking is done here.
type registry[T any] struct {
	items  map[int]T
	lastID int
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{items: make(map[int]T)}
}

// insert stores v under the next id and returns it. The first id is 1.
func (r *registry[T]) insert(v T) int {
	r.lastID++
	r.items[r.lastID] = v
	return r.lastID
}

// adopt stores v under an id allocated by the script context. The id must be
// greater than every id seen so far; otherwise adopt is a no-op and returns
// false, which keeps ids unique and monotonic for the registry's lifetime.
func (r *registry[T]) adopt(id int, v T) bool {
	if id <= r.lastID {
		return false
	}
	r.lastID = id
	r.items[id] = v
	return true
}

func (r *registry[T]) get(id int) (T, bool) {
	v, ok := r.items[id]
	return v, ok
}

// remove deletes id and returns the resource it held, if any.
func (r *registry[T]) remove(id int) (T, bool) {
	v, ok := r.items[id]
	if ok {
		delete(r.items, id)
	}
	return v, ok
}

func (r *registry[T]) len() int {
	return len(r.items)
}

// clear drops every resource. lastID is kept so ids are never reused.
func (r *registry[T]) clear() {
	clear(r.items)
}
