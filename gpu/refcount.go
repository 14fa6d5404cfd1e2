package gpu

// refCount tracks shared ownership of a native object. It is not safe for
// concurrent use; all GL objects live on the thread that owns the context.
type refCount struct {
	n int
}

func newRefCount() refCount { return refCount{n: 1} }

func (r *refCount) retain() {
	if r.n <= 0 {
		panic("gpu: retain of a released object")
	}
	r.n++
}

// release drops one reference and reports whether it was the last one.
// Releasing an already released object is a no-op.
func (r *refCount) release() bool {
	if r.n <= 0 {
		return false
	}
	r.n--
	return r.n == 0
}

func (r *refCount) count() int { return r.n }
