package container

import (
	"github.com/rs/zerolog"

	"github.com/ivanzzeth/go-locking-containers/lock"
)

// Configurable options here; MetaLock ignores Lock (its gate is always an
// RWLock).
type Config struct {
	// Name labels the container in logs and metrics. Defaults to a
	// uuid-suffixed name.
	Name string

	// Lock is the lock protecting the contained value. Defaults to a
	// fresh RWLock.
	Lock lock.Lock

	// Logger enables debug logging of acquisitions and releases when
	// non-nil.
	Logger *zerolog.Logger
}

type Option func(*Config)

func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

func WithLock(l lock.Lock) Option {
	return func(c *Config) {
		c.Lock = l
	}
}

// WithLogger sets the logger for the container
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
