package analysis

// Binding scopes one asynchronous fetch to the lifetime of an active view.
// Results from a previous activation are ignored.
type Binding struct {
	gen     uint64
	active  bool
	loading bool
	data    Data
	err     error
}

// Activate starts a new lifetime and returns the token the fetch result
// must carry. Previous data is discarded.
func (b *Binding) Activate() uint64 {
	b.gen++
	b.active = true
	b.loading = true
	b.data = Data{}
	b.err = nil
	return b.gen
}

// Deactivate ends the current lifetime; pending results become no-ops.
func (b *Binding) Deactivate() {
	b.gen++
	b.active = false
}

// Settle applies a fetch result. It returns false when the result belongs
// to a stale or inactive lifetime. A failed fetch leaves the binding
// loading; the error is kept for the caller.
func (b *Binding) Settle(gen uint64, data Data, err error) bool {
	if !b.active || gen != b.gen {
		return false
	}
	if err != nil {
		b.err = err
		return true
	}
	b.data = data
	b.loading = false
	b.err = nil
	return true
}

func (b Binding) Active() bool  { return b.active }
func (b Binding) Loading() bool { return b.loading }
func (b Binding) Data() Data    { return b.data }
func (b Binding) Err() error    { return b.err }
func (b Binding) Gen() uint64   { return b.gen }
