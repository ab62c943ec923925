package container

import (
	"github.com/ivanzzeth/go-locking-containers/lock"
)

// hold is the shared inner acquisition behind one or more proxies. The
// reference count is deliberately non-atomic: proxies are confined to the
// goroutine that acquired them.
type hold[T any] struct {
	ptr       *T
	lck       lock.Lock
	gate      lock.Lock
	auth      lock.Auth
	shared    bool
	lockCount int
	refs      int
	onRelease func()
}

// newHold acquires the meta-lock gate (if any) and then the container's
// lock. The gate hold is real but never recorded against the authorization;
// the authorization only vets it. Either failure yields a nil hold with
// everything unwound.
func newHold[T any](ptr *T, lck lock.Lock, auth lock.Auth, shared, blocking bool, gate lock.Lock) *hold[T] {
	if gate != nil {
		if gate.Acquire(auth, true, blocking, true) < 0 {
			return nil
		}
	}
	count := lock.Failed
	if lck != nil {
		count = lck.Acquire(auth, shared, blocking, false)
	}
	if count < 0 {
		if gate != nil {
			// The gate hold was never recorded against the auth.
			gate.Release(nil, true, false)
		}
		return nil
	}
	return &hold[T]{
		ptr:       ptr,
		lck:       lck,
		gate:      gate,
		auth:      auth,
		shared:    shared,
		lockCount: count,
		refs:      1,
	}
}

func (h *hold[T]) retain() {
	h.refs++
}

func (h *hold[T]) release() {
	h.refs--
	if h.refs > 0 {
		return
	}
	h.lck.Release(h.auth, h.shared, false)
	if h.gate != nil {
		h.gate.Release(nil, true, false)
	}
	h.ptr = nil
	if h.onRelease != nil {
		h.onRelease()
	}
}

// Proxy is a write-access handle to a container's value. While any copy of
// it is live the container holds an exclusive acquisition. A Proxy must stay
// within the goroutine that acquired it; its reference counting is not
// synchronized.
type Proxy[T any] struct {
	h *hold[T]
}

// Valid reports whether the acquisition succeeded. Always check it before
// using Value.
func (p *Proxy[T]) Valid() bool {
	return p != nil && p.h != nil && p.h.ptr != nil
}

// Value returns the protected value, or nil for an invalid proxy.
func (p *Proxy[T]) Value() *T {
	if !p.Valid() {
		return nil
	}
	return p.h.ptr
}

// Clone returns another handle to the same acquisition. The lock is released
// only when the last handle is cleared.
func (p *Proxy[T]) Clone() *Proxy[T] {
	if !p.Valid() {
		return &Proxy[T]{}
	}
	p.h.retain()
	return &Proxy[T]{h: p.h}
}

// Clear drops this handle, releasing the lock if it was the last one.
// Clearing an already-cleared or invalid proxy has no effect.
func (p *Proxy[T]) Clear() {
	if p == nil || p.h == nil {
		return
	}
	p.h.release()
	p.h = nil
}

// LastLockCount reports the reader total at acquisition time, mostly for
// debugging. 0 for an invalid proxy.
func (p *Proxy[T]) LastLockCount() int {
	if p == nil || p.h == nil {
		return 0
	}
	return p.h.lockCount
}

// ReadProxy is the shared-access counterpart of Proxy. The value must not be
// mutated through it.
type ReadProxy[T any] struct {
	h *hold[T]
}

func (p *ReadProxy[T]) Valid() bool {
	return p != nil && p.h != nil && p.h.ptr != nil
}

// Value returns the protected value, or nil for an invalid proxy. Callers
// must treat the pointee as read-only.
func (p *ReadProxy[T]) Value() *T {
	if !p.Valid() {
		return nil
	}
	return p.h.ptr
}

func (p *ReadProxy[T]) Clone() *ReadProxy[T] {
	if !p.Valid() {
		return &ReadProxy[T]{}
	}
	p.h.retain()
	return &ReadProxy[T]{h: p.h}
}

func (p *ReadProxy[T]) Clear() {
	if p == nil || p.h == nil {
		return
	}
	p.h.release()
	p.h = nil
}

func (p *ReadProxy[T]) LastLockCount() int {
	if p == nil || p.h == nil {
		return 0
	}
	return p.h.lockCount
}
