package lock

import (
	"sync"
)

var _ Lock = (*DumbLock)(nil)

// DumbLock is a bare mutex with no reader or writer accounting. Because it
// can't tell whether it is held, it always reports itself to the
// authorization as contended. A DumbAuth that already holds a lock refuses
// it; the RW, R and W authorizations, while holding a lock, downgrade the
// request to a non-blocking try, which still succeeds if the mutex is free.
type DumbLock struct {
	m     sync.Mutex
	order Order
}

func NewDumbLock(opts ...Option) *DumbLock {
	cfg := applyOptions(opts)
	return &DumbLock{order: cfg.Order}
}

func (l *DumbLock) Acquire(auth Auth, shared, blocking, test bool) int {
	if l.order != 0 && auth == nil {
		return Failed
	}

	info := AcquireInfo{Shared: shared, Blocking: blocking, LockOut: true, InUse: true, Order: l.order}
	if !registerOrTest(auth, &info, test) {
		return Failed
	}
	if info.Blocking {
		l.m.Lock()
	} else if !l.m.TryLock() {
		if !test {
			releaseAuth(auth, ReleaseInfo{Shared: shared, Order: l.order})
		}
		return Failed
	}
	return 0
}

func (l *DumbLock) Release(auth Auth, shared, test bool) int {
	if !test {
		releaseAuth(auth, ReleaseInfo{Shared: shared, Order: l.order})
	}
	// Unlock of an unlocked mutex panics, which is the contract for
	// releasing a lock that is not held.
	l.m.Unlock()
	return 0
}

func (l *DumbLock) Order() Order { return l.order }

func (l *DumbLock) NewAuth() Auth {
	if l.order != 0 {
		return NewOrderedAuth(NewDumbAuth())
	}
	return NewDumbAuth()
}
