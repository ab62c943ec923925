package lock

import (
	"sync/atomic"
)

var _ Lock = (*RLock)(nil)

// RLock allows multiple readers but never a writer. Useful for a container
// that is never written to but must keep the same container semantics.
// Acquisitions never block; the only state is an atomic reader counter.
type RLock struct {
	readers atomic.Int64
	order   Order
}

func NewRLock(opts ...Option) *RLock {
	cfg := applyOptions(opts)
	return &RLock{order: cfg.Order}
}

func (l *RLock) Acquire(auth Auth, shared, blocking, test bool) int {
	if !shared {
		return Failed
	}
	if l.order != 0 && auth == nil {
		return Failed
	}

	info := AcquireInfo{Shared: true, Blocking: blocking, Order: l.order}
	if !registerOrTest(auth, &info, test) {
		return Failed
	}
	return int(l.readers.Add(1))
}

func (l *RLock) Release(auth Auth, shared, test bool) int {
	if !shared {
		return Failed
	}
	if !test {
		releaseAuth(auth, ReleaseInfo{Shared: true, Order: l.order})
	}
	n := l.readers.Add(-1)
	if n < 0 {
		panic("lock: release of unlocked RLock")
	}
	return int(n)
}

func (l *RLock) Order() Order { return l.order }

func (l *RLock) NewAuth() Auth {
	if l.order != 0 {
		return NewOrderedAuth(NewRAuth())
	}
	return NewRAuth()
}
