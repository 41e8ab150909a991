package proto

// ViewProxy is implemented by every view and mutator of a field of view type V.
type ViewProxy[V any] interface {
	// AsView returns a view of the current value.
	AsView() V
	// IntoView converts the proxy itself into a view.
	IntoView() V
}

// MutProxy is implemented by mutators. M is the mutator type itself.
type MutProxy[V, M any] interface {
	ViewProxy[V]
	// AsMut re-borrows the mutator. The result shares its exclusivity.
	AsMut() M
	// IntoMut converts the mutator into its re-borrowed form.
	IntoMut() M
}

// Proxied is implemented by owned values that hand out views and mutators.
type Proxied[V, M any] interface {
	AsView() V
	AsMut() M
}

// ProxiedWithPresence moves a field between its present mutator P and its
// absent mutator A.
type ProxiedWithPresence[P, A any] interface {
	ClearPresentField(P) A
	SetAbsentToDefault(A) P
}

// SettableValue is anything that can be written through a mutator M.
type SettableValue[M any] interface {
	SetOn(M)
}

// Get reads the current value through a mutator or view.
func Get[V any](p ViewProxy[V]) V {
	return p.AsView()
}

// Set writes v through m.
func Set[M any](m M, v SettableValue[M]) {
	v.SetOn(m)
}

// Val wraps a plain value so it can be passed to Set.
type Val[T any] struct {
	V T
}

// ValueOf returns v as a SettableValue of a primitive field.
func ValueOf[T any](v T) Val[T] {
	return Val[T]{V: v}
}

// SetOn stores the wrapped value through m.
func (v Val[T]) SetOn(m PrimitiveMut[T]) { m.Set(v.V) }
