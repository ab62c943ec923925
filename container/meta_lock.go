package container

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ivanzzeth/go-locking-containers/lock"
	"github.com/ivanzzeth/go-locking-containers/metrics"
)

// MetaLock is a value-less container used as a global gate for
// multi-container critical sections. Containers acquired "through" the
// meta-lock hold a shared acquisition of its gate for the life of the proxy.
// Taking the gate exclusively therefore drains all in-flight through-
// acquisitions and blocks new ones; with every gated container idle, the
// exclusive holder's authorization permits it to lock as many containers as
// it needs, which a single acquisition would otherwise forbid.
type MetaLock struct {
	gate   *lock.RWLock
	name   string
	logger *zerolog.Logger
	token  byte
}

func NewMetaLock(opts ...Option) *MetaLock {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Name == "" {
		cfg.Name = "meta-lock-" + uuid.New().String()
	}
	return &MetaLock{
		gate:   lock.NewRWLock(),
		name:   cfg.Name,
		logger: cfg.Logger,
	}
}

func (m *MetaLock) Name() string {
	return m.name
}

// NewAuth constructs an authorization suitable for acquiring the meta-lock
// itself and any RWLock container gated by it.
func (m *MetaLock) NewAuth() lock.Auth {
	return m.gate.NewAuth()
}

// AcquireWrite takes the gate exclusively: it blocks until all in-flight
// through-acquisitions complete, then holds off new ones until the returned
// proxy is cleared. The hold is recorded against auth, which afterwards
// permits auth to lock multiple gated containers. The exclusive hold can be
// dropped as soon as all needed object proxies have been obtained; the
// object proxies keep protecting their targets.
func (m *MetaLock) AcquireWrite(auth lock.Auth, blocking bool) *MetaProxy {
	return m.acquire(auth, false, blocking)
}

// AcquireRead takes the gate shared, recorded against auth. This is the same
// hold a through-acquisition takes implicitly, minus any object lock.
func (m *MetaLock) AcquireRead(auth lock.Auth, blocking bool) *MetaProxy {
	return m.acquire(auth, true, blocking)
}

func (m *MetaLock) acquire(auth lock.Auth, shared, blocking bool) *MetaProxy {
	access := metrics.ContainerAccessWrite
	if shared {
		access = metrics.ContainerAccessRead
	}
	metrics.MetricMetaLockAcquireTotal.WithLabelValues(m.name, string(access)).Inc()

	h := newHold(&m.token, m.gate, auth, shared, blocking, nil)
	if h == nil {
		metrics.MetricMetaLockAcquireFailedTotal.WithLabelValues(m.name, string(access)).Inc()
		if logger := m.logIfEnabled(); logger != nil {
			logger.Debug().
				Str("meta_lock_name", m.name).
				Str("access", string(access)).
				Msg("Gate acquisition refused")
		}
		return &MetaProxy{}
	}
	if logger := m.logIfEnabled(); logger != nil {
		logger.Debug().
			Str("meta_lock_name", m.name).
			Str("access", string(access)).
			Msg("Gate acquired")
	}
	return &MetaProxy{h: h}
}

// gateLock hands the gate to container acquisitions; a nil meta-lock means
// no gate.
func (m *MetaLock) gateLock() lock.Lock {
	if m == nil {
		return nil
	}
	return m.gate
}

func (m *MetaLock) logIfEnabled() *zerolog.Logger {
	return m.logger
}

// MetaProxy is the handle for a meta-lock gate hold. It has proxy semantics
// minus a value: single-goroutine, reference-counted, released when the last
// handle is cleared.
type MetaProxy struct {
	h *hold[byte]
}

func (p *MetaProxy) Valid() bool {
	return p != nil && p.h != nil && p.h.ptr != nil
}

func (p *MetaProxy) Clone() *MetaProxy {
	if !p.Valid() {
		return &MetaProxy{}
	}
	p.h.retain()
	return &MetaProxy{h: p.h}
}

func (p *MetaProxy) Clear() {
	if p == nil || p.h == nil {
		return
	}
	p.h.release()
	p.h = nil
}

func (p *MetaProxy) LastLockCount() int {
	if p == nil || p.h == nil {
		return 0
	}
	return p.h.lockCount
}
