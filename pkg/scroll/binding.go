package scroll

// Binding is a read/write value shared between the caller and the
// synchronizer, such as a content offset or a refreshing flag.
//
// The caller writes it to request a change; the synchronizer writes it to
// surface changes made by the user. Listeners run synchronously on Set when
// the value changes.
type Binding[T comparable] struct {
	value          T
	listeners      map[int]func(T)
	nextListenerID int
}

// NewBinding returns a binding holding initial.
func NewBinding[T comparable](initial T) *Binding[T] {
	return &Binding[T]{value: initial}
}

// Get returns the current value.
func (b *Binding[T]) Get() T {
	return b.value
}

// Set stores v and notifies listeners if it differs from the current value.
func (b *Binding[T]) Set(v T) {
	if v == b.value {
		return
	}
	b.value = v
	for _, listener := range b.listeners {
		listener(v)
	}
}

// AddListener registers a callback for value changes and returns a function
// that removes it.
func (b *Binding[T]) AddListener(listener func(T)) func() {
	if listener == nil {
		return func() {}
	}
	if b.listeners == nil {
		b.listeners = make(map[int]func(T))
	}
	id := b.nextListenerID
	b.nextListenerID++
	b.listeners[id] = listener
	return func() {
		delete(b.listeners, id)
	}
}
