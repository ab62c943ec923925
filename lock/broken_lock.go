package lock

var _ Lock = (*BrokenLock)(nil)

// BrokenLock always fails to acquire and release. Mostly a joke, but useful
// for exercising pathological cases.
type BrokenLock struct{}

func NewBrokenLock() *BrokenLock {
	return &BrokenLock{}
}

func (l *BrokenLock) Acquire(auth Auth, shared, blocking, test bool) int { return Failed }

func (l *BrokenLock) Release(auth Auth, shared, test bool) int { return Failed }

func (l *BrokenLock) Order() Order { return 0 }

func (l *BrokenLock) NewAuth() Auth { return NewBrokenAuth() }
