package lock

var (
	_ Auth = (*RWAuth)(nil)
	_ Auth = (*RAuth)(nil)
	_ Auth = (*WAuth)(nil)
	_ Auth = (*DumbAuth)(nil)
	_ Auth = (*BrokenAuth)(nil)
	_ Auth = (*OrderedAuth)(nil)
)

// Auth is a per-caller authorization object used for deadlock prevention.
// Create one per goroutine and pass it to every acquisition that goroutine
// makes; the authorization refuses (or downgrades to non-blocking) any new
// acquisition that would make the caller wait while other callers are
// waiting on locks the caller already holds.
//
// A nil Auth is the null authorization: it permits everything and records
// nothing. An Auth must never be shared between goroutines; it is
// deliberately unsynchronized.
type Auth interface {
	// ReadingCount reports the number of read locks this caller holds.
	ReadingCount() int

	// WritingCount reports the number of write locks this caller holds.
	WritingCount() int

	// WouldAllow reports whether this authorization's policy would permit
	// the given acquisition against an idle, uncontended lock. It has no
	// side effects.
	WouldAllow(shared, blocking bool) bool

	// Close asserts that no acquisitions are outstanding. Closing an
	// authorization with live acquisitions is a programming error and
	// panics.
	Close()

	// register evaluates (and, unless test is set, records) an attempted
	// acquisition. It may downgrade info.Blocking to false; the lock then
	// applies the downgraded flag against its must-block predicate.
	register(info *AcquireInfo, test bool) bool

	// release undoes one recorded acquisition.
	release(info ReleaseInfo)

	orderAllowed(order Order) bool
}

func wouldAllow(a Auth, shared, blocking bool) bool {
	info := AcquireInfo{Shared: shared, Blocking: blocking}
	return a.register(&info, true)
}

// RWAuth is the authorization for RWLock containers. It does not limit how
// many read or write locks the caller holds, but while it holds anything a
// new acquisition is downgraded to non-blocking whenever someone else is
// already waiting on the target lock, or the target lock is busy and the
// request would escalate (a write request, or any request while holding a
// write). A caller holding nothing may always block. The one exception is
// the reentrant read-from-writer case, for which the lock reports the target
// as idle.
type RWAuth struct {
	reading, writing int
}

func NewRWAuth() *RWAuth {
	return &RWAuth{}
}

func (a *RWAuth) ReadingCount() int { return a.reading }
func (a *RWAuth) WritingCount() int { return a.writing }

func (a *RWAuth) WouldAllow(shared, blocking bool) bool {
	return wouldAllow(a, shared, blocking)
}

func (a *RWAuth) Close() {
	if a.reading != 0 || a.writing != 0 {
		panic("lock: close of authorization with live acquisitions")
	}
}

func (a *RWAuth) register(info *AcquireInfo, test bool) bool {
	if !a.orderAllowed(info.Order) {
		return false
	}
	if (a.reading > 0 || a.writing > 0) && info.LockOut {
		info.Blocking = false
	}
	if (a.writing > 0 || (a.reading > 0 && !info.Shared)) && info.InUse {
		info.Blocking = false
	}
	if test {
		return true
	}
	if info.Shared {
		a.reading++
	} else {
		a.writing++
	}
	return true
}

func (a *RWAuth) release(info ReleaseInfo) {
	if info.Shared {
		// NOTE: 'writing' may legitimately be non-zero here (reentrant
		// read-from-writer), so only 'reading' is checked.
		if a.reading <= 0 {
			panic("lock: release of unheld read authorization")
		}
		a.reading--
	} else {
		if a.writing <= 0 {
			panic("lock: release of unheld write authorization")
		}
		a.writing--
	}
}

func (a *RWAuth) orderAllowed(order Order) bool { return order == 0 }

// RAuth is the authorization for RLock containers: any number of read locks,
// never a write lock. A new read is downgraded to non-blocking while the
// caller holds reads and someone else is waiting on the target.
type RAuth struct {
	reading int
}

func NewRAuth() *RAuth {
	return &RAuth{}
}

func (a *RAuth) ReadingCount() int { return a.reading }
func (a *RAuth) WritingCount() int { return 0 }

func (a *RAuth) WouldAllow(shared, blocking bool) bool {
	return wouldAllow(a, shared, blocking)
}

func (a *RAuth) Close() {
	if a.reading != 0 {
		panic("lock: close of authorization with live acquisitions")
	}
}

func (a *RAuth) register(info *AcquireInfo, test bool) bool {
	if !info.Shared {
		return false
	}
	if !a.orderAllowed(info.Order) {
		return false
	}
	if a.reading > 0 && info.LockOut {
		info.Blocking = false
	}
	if test {
		return true
	}
	a.reading++
	return true
}

func (a *RAuth) release(info ReleaseInfo) {
	if !info.Shared || a.reading <= 0 {
		panic("lock: release of unheld read authorization")
	}
	a.reading--
}

func (a *RAuth) orderAllowed(order Order) bool { return order == 0 }

// WAuth is the authorization for WLock containers. While the caller holds a
// lock, a new acquisition is downgraded to non-blocking if the target is in
// use or someone else is waiting on it; an idle target is still granted.
// Every acquisition it records counts as a write, mirroring WLock's
// treatment of all acquisitions as exclusive.
type WAuth struct {
	writing int
}

func NewWAuth() *WAuth {
	return &WAuth{}
}

func (a *WAuth) ReadingCount() int { return 0 }
func (a *WAuth) WritingCount() int { return a.writing }

func (a *WAuth) WouldAllow(shared, blocking bool) bool {
	return wouldAllow(a, shared, blocking)
}

func (a *WAuth) Close() {
	if a.writing != 0 {
		panic("lock: close of authorization with live acquisitions")
	}
}

func (a *WAuth) register(info *AcquireInfo, test bool) bool {
	if !a.orderAllowed(info.Order) {
		return false
	}
	if a.writing > 0 && (info.LockOut || info.InUse) {
		info.Blocking = false
	}
	if test {
		return true
	}
	a.writing++
	return true
}

func (a *WAuth) release(info ReleaseInfo) {
	if a.writing <= 0 {
		panic("lock: release of unheld write authorization")
	}
	a.writing--
}

func (a *WAuth) orderAllowed(order Order) bool { return order == 0 }

// DumbAuth is the authorization for DumbLock containers: one lock at a time,
// full stop. DumbLock always reports itself as contended, so a caller
// holding anything is refused outright rather than downgraded.
type DumbAuth struct {
	writing bool
}

func NewDumbAuth() *DumbAuth {
	return &DumbAuth{}
}

func (a *DumbAuth) ReadingCount() int { return 0 }

func (a *DumbAuth) WritingCount() int {
	if a.writing {
		return 1
	}
	return 0
}

func (a *DumbAuth) WouldAllow(shared, blocking bool) bool {
	return wouldAllow(a, shared, blocking)
}

func (a *DumbAuth) Close() {
	if a.writing {
		panic("lock: close of authorization with live acquisitions")
	}
}

func (a *DumbAuth) register(info *AcquireInfo, test bool) bool {
	if !a.orderAllowed(info.Order) {
		return false
	}
	if a.writing {
		return false
	}
	if test {
		return true
	}
	a.writing = true
	return true
}

func (a *DumbAuth) release(info ReleaseInfo) {
	if !a.writing {
		panic("lock: release of unheld write authorization")
	}
	a.writing = false
}

func (a *DumbAuth) orderAllowed(order Order) bool { return order == 0 }

// BrokenAuth refuses every acquisition. Exists for negative testing.
type BrokenAuth struct{}

func NewBrokenAuth() *BrokenAuth {
	return &BrokenAuth{}
}

func (a *BrokenAuth) ReadingCount() int { return 0 }
func (a *BrokenAuth) WritingCount() int { return 0 }

func (a *BrokenAuth) WouldAllow(shared, blocking bool) bool { return false }

func (a *BrokenAuth) Close() {}

func (a *BrokenAuth) register(info *AcquireInfo, test bool) bool { return false }

func (a *BrokenAuth) release(info ReleaseInfo) {
	panic("lock: release on broken authorization")
}

func (a *BrokenAuth) orderAllowed(order Order) bool { return false }
