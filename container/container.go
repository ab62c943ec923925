// Package container binds a value to a lock so that the only path to the
// value is an access proxy holding a live acquisition. Containers accept an
// authorization object at every acquisition site for deadlock prevention,
// and optionally a meta-lock gate for multi-container critical sections.
package container

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ivanzzeth/go-locking-containers/lock"
	"github.com/ivanzzeth/go-locking-containers/metrics"
)

// Container owns a value of type T and the lock protecting it. The value
// lives exactly as long as the container; proxies expose it for the duration
// of an acquisition.
type Container[T any] struct {
	value  T
	lck    lock.Lock
	name   string
	logger *zerolog.Logger
}

// New constructs a container around value. The default lock is an RWLock;
// use WithLock to choose another variant.
func New[T any](value T, opts ...Option) *Container[T] {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Lock == nil {
		cfg.Lock = lock.NewRWLock()
	}
	if cfg.Name == "" {
		cfg.Name = "container-" + uuid.New().String()
	}
	return &Container[T]{
		value:  value,
		lck:    cfg.Lock,
		name:   cfg.Name,
		logger: cfg.Logger,
	}
}

func (c *Container[T]) Name() string {
	return c.name
}

// NewAuth constructs the authorization variant appropriate to this
// container's lock type.
func (c *Container[T]) NewAuth() lock.Auth {
	return c.lck.NewAuth()
}

// AcquireWrite returns a write proxy without deadlock prevention. Always
// check the proxy with Valid before use.
func (c *Container[T]) AcquireWrite(blocking bool) *Proxy[T] {
	return c.AcquireWriteAuth(nil, blocking)
}

// AcquireRead returns a read proxy without deadlock prevention.
func (c *Container[T]) AcquireRead(blocking bool) *ReadProxy[T] {
	return c.AcquireReadAuth(nil, blocking)
}

// AcquireWriteAuth returns a write proxy, vetting and recording the
// acquisition against auth.
func (c *Container[T]) AcquireWriteAuth(auth lock.Auth, blocking bool) *Proxy[T] {
	return c.acquireWrite(nil, auth, blocking)
}

// AcquireReadAuth returns a read proxy, vetting and recording the
// acquisition against auth.
func (c *Container[T]) AcquireReadAuth(auth lock.Auth, blocking bool) *ReadProxy[T] {
	return c.acquireRead(nil, auth, blocking)
}

// AcquireWriteThrough is AcquireWriteAuth honoring the given meta-lock gate:
// the proxy additionally holds a shared acquisition of the gate for its
// lifetime.
func (c *Container[T]) AcquireWriteThrough(meta *MetaLock, auth lock.Auth, blocking bool) *Proxy[T] {
	return c.acquireWrite(meta.gateLock(), auth, blocking)
}

// AcquireReadThrough is AcquireReadAuth honoring the given meta-lock gate.
func (c *Container[T]) AcquireReadThrough(meta *MetaLock, auth lock.Auth, blocking bool) *ReadProxy[T] {
	return c.acquireRead(meta.gateLock(), auth, blocking)
}

func (c *Container[T]) acquireWrite(gate lock.Lock, auth lock.Auth, blocking bool) *Proxy[T] {
	h := newHold(&c.value, c.lck, auth, false, blocking, gate)
	c.observeAcquire(metrics.ContainerAccessWrite, h)
	return &Proxy[T]{h: h}
}

func (c *Container[T]) acquireRead(gate lock.Lock, auth lock.Auth, blocking bool) *ReadProxy[T] {
	h := newHold(&c.value, c.lck, auth, true, blocking, gate)
	c.observeAcquire(metrics.ContainerAccessRead, h)
	return &ReadProxy[T]{h: h}
}

func (c *Container[T]) observeAcquire(access metrics.ContainerAccess, h *hold[T]) {
	metrics.MetricContainerAcquireTotal.WithLabelValues(c.name, string(access)).Inc()
	if h == nil {
		metrics.MetricContainerAcquireFailedTotal.WithLabelValues(c.name, string(access)).Inc()
		if logger := c.logIfEnabled(); logger != nil {
			logger.Debug().
				Str("container_name", c.name).
				Str("access", string(access)).
				Msg("Acquisition refused")
		}
		return
	}

	metrics.MetricContainerProxiesLive.WithLabelValues(c.name, string(access)).Inc()
	if logger := c.logIfEnabled(); logger != nil {
		logger.Debug().
			Str("container_name", c.name).
			Str("access", string(access)).
			Int("lock_count", h.lockCount).
			Msg("Proxy acquired")
	}
	h.onRelease = func() {
		metrics.MetricContainerReleaseTotal.WithLabelValues(c.name, string(access)).Inc()
		metrics.MetricContainerProxiesLive.WithLabelValues(c.name, string(access)).Dec()
		if logger := c.logIfEnabled(); logger != nil {
			logger.Debug().
				Str("container_name", c.name).
				Str("access", string(access)).
				Msg("Proxy released")
		}
	}
}

// logIfEnabled is a helper method to check if logger is set
func (c *Container[T]) logIfEnabled() *zerolog.Logger {
	return c.logger
}

// Close blocks until every outstanding proxy has been released, by taking
// and dropping a write acquisition with a fresh authorization. A container
// whose lock refuses exclusive acquisitions closes immediately: a BrokenLock
// container can have nothing outstanding, and an RLock container's read
// proxies are not waited for. The container must not be used afterwards.
func (c *Container[T]) Close() {
	// Ordered locks refuse a nil authorization.
	auth := c.lck.NewAuth()
	if c.lck.Acquire(auth, false, true, false) >= 0 {
		c.lck.Release(auth, false, false)
	}
	auth.Close()
}

// Set replaces the contained value under a write lock.
//
// Deprecated: panics if the lock can't be acquired; only use it where
// anything but success is unrecoverable.
func (c *Container[T]) Set(value T) {
	p := c.AcquireWrite(true)
	if !p.Valid() {
		panic("container: cannot lock container for assignment")
	}
	defer p.Clear()
	*p.Value() = value
}

// CopyFrom copies src's value into c, locking c for write first and src for
// read second. Copying a container onto itself is a no-op.
//
// Deprecated: panics if either lock can't be acquired; only use it where
// anything but success is unrecoverable.
func (c *Container[T]) CopyFrom(src *Container[T]) {
	if c == src {
		return
	}
	dst := c.AcquireWrite(true)
	if !dst.Valid() {
		panic("container: cannot lock container for assignment")
	}
	defer dst.Clear()
	from := src.AcquireRead(true)
	if !from.Valid() {
		panic("container: cannot lock source container for assignment")
	}
	defer from.Clear()
	*dst.Value() = *from.Value()
}
