package lock

import (
	"sync"
)

var _ Lock = (*WLock)(nil)

// WLock makes no distinction between readers and writers; only one caller
// holds the lock at any given time. It operates faster than RWLock when read
// locks aren't needed. For deadlock prevention every acquisition is treated
// as a write lock.
type WLock struct {
	m    sync.Mutex
	wait *sync.Cond

	writer         bool
	writersWaiting int

	order Order
}

func NewWLock(opts ...Option) *WLock {
	cfg := applyOptions(opts)
	l := &WLock{order: cfg.Order}
	l.wait = sync.NewCond(&l.m)
	return l
}

func (l *WLock) Acquire(auth Auth, shared, blocking, test bool) int {
	if l.order != 0 && auth == nil {
		return Failed
	}

	l.m.Lock()
	defer l.m.Unlock()

	lockOut := l.writersWaiting > 0
	mustBlock := l.writer || l.writersWaiting > 0

	// Every acquisition locks out readers, so the authorization always
	// sees a write request.
	info := AcquireInfo{Shared: false, Blocking: blocking, LockOut: lockOut, InUse: mustBlock, Order: l.order}
	if !registerOrTest(auth, &info, test) {
		return Failed
	}
	if !info.Blocking && mustBlock {
		if !test {
			releaseAuth(auth, ReleaseInfo{Shared: false, Order: l.order})
		}
		return Failed
	}

	l.writersWaiting++
	for l.writer {
		l.wait.Wait()
	}
	l.writersWaiting--
	l.writer = true
	return 0
}

func (l *WLock) Release(auth Auth, shared, test bool) int {
	l.m.Lock()
	defer l.m.Unlock()

	if !test {
		releaseAuth(auth, ReleaseInfo{Shared: false, Order: l.order})
	}
	if !l.writer {
		panic("lock: release of unlocked WLock")
	}
	l.writer = false
	if l.writersWaiting > 0 {
		l.wait.Broadcast()
	}
	return 0
}

func (l *WLock) Order() Order { return l.order }

func (l *WLock) NewAuth() Auth {
	if l.order != 0 {
		return NewOrderedAuth(NewWAuth())
	}
	return NewWAuth()
}
