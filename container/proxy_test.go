package container

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProxyCloneSharesAcquisition(t *testing.T) {
	c := New(10)

	p := c.AcquireWrite(true)
	require.True(t, p.Valid())
	q := p.Clone()
	require.True(t, q.Valid())
	require.Same(t, p.Value(), q.Value())

	// Clearing one handle keeps the lock held.
	p.Clear()
	require.False(t, p.Valid())
	require.True(t, q.Valid())
	require.False(t, c.AcquireWrite(false).Valid())

	// The last handle releases it.
	q.Clear()
	w := c.AcquireWrite(false)
	require.True(t, w.Valid())
	w.Clear()
}

func TestProxyClearIdempotent(t *testing.T) {
	c := New(1)

	p := c.AcquireWrite(true)
	require.True(t, p.Valid())
	p.Clear()
	p.Clear()
	p.Clear()

	w := c.AcquireWrite(false)
	require.True(t, w.Valid())
	w.Clear()
}

func TestInvalidProxy(t *testing.T) {
	p := &Proxy[int]{}
	require.False(t, p.Valid())
	require.Nil(t, p.Value())
	require.Equal(t, 0, p.LastLockCount())
	require.False(t, p.Clone().Valid())
	p.Clear() // no-op

	r := &ReadProxy[int]{}
	require.False(t, r.Valid())
	require.Nil(t, r.Value())
	require.False(t, r.Clone().Valid())
	r.Clear()
}

func TestReadProxyClone(t *testing.T) {
	c := New(3)

	p := c.AcquireRead(true)
	require.True(t, p.Valid())
	q := p.Clone()
	p.Clear()
	require.Equal(t, 3, *q.Value())

	// Still one reader live: writers stay out.
	require.False(t, c.AcquireWrite(false).Valid())
	q.Clear()
}

func TestProxyLastLockCount(t *testing.T) {
	c := New(0)

	r1 := c.AcquireRead(true)
	r2 := c.AcquireRead(true)
	require.Equal(t, 1, r1.LastLockCount())
	require.Equal(t, 2, r2.LastLockCount())
	r2.Clear()
	r1.Clear()

	w := c.AcquireWrite(true)
	require.Equal(t, 0, w.LastLockCount())
	w.Clear()
}

func TestProxyAuthAccounting(t *testing.T) {
	c := New(0)
	auth := c.NewAuth()

	r := c.AcquireReadAuth(auth, true)
	require.True(t, r.Valid())
	require.Equal(t, 1, auth.ReadingCount())

	clone := r.Clone()
	require.Equal(t, 1, auth.ReadingCount(), "clones share one acquisition")

	r.Clear()
	require.Equal(t, 1, auth.ReadingCount())
	clone.Clear()
	require.Equal(t, 0, auth.ReadingCount())
	auth.Close()
}
