package lock

import (
	"sync"
)

var _ Lock = (*RWLock)(nil)

// RWLock allows multiple readers at a time; a writer can only get in once no
// readers or writers hold the lock. Writers have priority: a writer waiting
// for the lock blocks out all new readers and writers until it is done. The
// authorization that holds the write lock may additionally obtain read locks
// on the same RWLock (reentrant read-from-writer); all other read requests
// are held off while the write lock is in place.
//
// This is the default lock used by containers.
type RWLock struct {
	m         sync.Mutex
	readWait  *sync.Cond
	writeWait *sync.Cond

	readers        int
	readersWaiting int
	writer         bool
	writerWaiting  bool
	theWriter      Auth

	order Order
}

func NewRWLock(opts ...Option) *RWLock {
	cfg := applyOptions(opts)
	l := &RWLock{order: cfg.Order}
	l.readWait = sync.NewCond(&l.m)
	l.writeWait = sync.NewCond(&l.m)
	return l
}

func (l *RWLock) Acquire(auth Auth, shared, blocking, test bool) int {
	if l.order != 0 && auth == nil {
		return Failed
	}

	l.m.Lock()
	defer l.m.Unlock()

	// The current writer may take additional read locks on this lock
	// without waiting; for that case the authorization sees an idle lock.
	writerReads := auth != nil && l.writer && auth == l.theWriter && shared

	lockOut := l.writerWaiting || l.readersWaiting > 0
	mustBlock := l.writer || l.writerWaiting || (!shared && l.readers > 0)
	if writerReads {
		lockOut = false
		mustBlock = false
	}

	info := AcquireInfo{Shared: shared, Blocking: blocking, LockOut: lockOut, InUse: mustBlock, Order: l.order}
	if !registerOrTest(auth, &info, test) {
		return Failed
	}
	if !info.Blocking && mustBlock {
		if !test {
			releaseAuth(auth, ReleaseInfo{Shared: shared, Order: l.order})
		}
		return Failed
	}

	if shared {
		l.readersWaiting++
		for !writerReads && (l.writer || l.writerWaiting) {
			l.readWait.Wait()
		}
		l.readersWaiting--
		l.readers++
		return l.readers
	}

	// Only one writer lines up at a time; the rest wait on readWait to
	// become the queued writer, since that's what a write release
	// broadcasts on.
	l.readersWaiting++
	for l.writerWaiting {
		l.readWait.Wait()
	}
	l.readersWaiting--
	l.writerWaiting = true
	for l.writer || l.readers > 0 {
		l.writeWait.Wait()
	}
	l.writerWaiting = false
	l.writer = true
	l.theWriter = auth
	return 0
}

func (l *RWLock) Release(auth Auth, shared, test bool) int {
	l.m.Lock()
	defer l.m.Unlock()

	if !test {
		releaseAuth(auth, ReleaseInfo{Shared: shared, Order: l.order})
	}

	if shared {
		if l.readers <= 0 {
			panic("lock: read release of unlocked RWLock")
		}
		if l.writer && (auth == nil || auth != l.theWriter) {
			panic("lock: read release of write-locked RWLock by non-writer")
		}
		l.readers--
		if l.readers == 0 && l.writerWaiting {
			l.writeWait.Broadcast()
		}
		return l.readers
	}

	if !l.writer {
		panic("lock: write release of unlocked RWLock")
	}
	l.writer = false
	l.theWriter = nil
	if l.writerWaiting {
		l.writeWait.Broadcast()
	}
	if l.readersWaiting > 0 {
		l.readWait.Broadcast()
	}
	return 0
}

func (l *RWLock) Order() Order { return l.order }

func (l *RWLock) NewAuth() Auth {
	if l.order != 0 {
		return NewOrderedAuth(NewRWAuth())
	}
	return NewRWAuth()
}
