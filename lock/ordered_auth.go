package lock

// OrderedAuth wraps a base authorization variant and additionally tracks the
// orders of the ordered locks the caller holds. An ordered acquisition is
// refused when the target lock is in use and the caller already holds a lock
// of an order that is not strictly less than the requested one; outside of
// that, the base rules apply only while the caller holds unordered locks.
// Holding two locks of the same order at once is a programming error.
type OrderedAuth struct {
	base      Auth
	ordered   map[Order]struct{}
	unordered int
}

func NewOrderedAuth(base Auth) *OrderedAuth {
	return &OrderedAuth{
		base:    base,
		ordered: make(map[Order]struct{}),
	}
}

func (a *OrderedAuth) ReadingCount() int { return a.base.ReadingCount() }
func (a *OrderedAuth) WritingCount() int { return a.base.WritingCount() }

func (a *OrderedAuth) WouldAllow(shared, blocking bool) bool {
	return wouldAllow(a, shared, blocking)
}

func (a *OrderedAuth) Close() {
	if a.unordered != 0 || len(a.ordered) != 0 {
		panic("lock: close of authorization with live acquisitions")
	}
	a.base.Close()
}

func (a *OrderedAuth) register(info *AcquireInfo, test bool) bool {
	// Disallow an ordered acquisition only if its order isn't strictly
	// greater than every held order and the target is currently in use.
	if info.Order != 0 && info.InUse && len(a.ordered) > 0 && a.maxHeldOrder() >= info.Order {
		return false
	}
	if !test && info.Order != 0 {
		if _, held := a.ordered[info.Order]; held {
			panic("lock: duplicate acquisition of lock order")
		}
	}

	// While only ordered locks are held the order discipline replaces the
	// lock-out/in-use rules.
	normal := info.Order == 0 || a.unordered > 0
	sub := *info
	sub.Order = 0 // the base variant only accepts unordered locks
	if !normal {
		sub.LockOut = false
		sub.InUse = false
	}
	if !a.base.register(&sub, test) {
		return false
	}
	info.Blocking = sub.Blocking
	if test {
		return true
	}

	if info.Order == 0 {
		a.unordered++
	} else {
		a.ordered[info.Order] = struct{}{}
	}
	return true
}

func (a *OrderedAuth) release(info ReleaseInfo) {
	if info.Order == 0 {
		if a.unordered <= 0 {
			panic("lock: release of unheld unordered authorization")
		}
		a.unordered--
	} else {
		if _, held := a.ordered[info.Order]; !held {
			panic("lock: release of unheld lock order")
		}
		delete(a.ordered, info.Order)
	}
	a.base.release(info)
}

func (a *OrderedAuth) orderAllowed(order Order) bool { return true }

func (a *OrderedAuth) maxHeldOrder() Order {
	var max Order
	for o := range a.ordered {
		if o > max {
			max = o
		}
	}
	return max
}
