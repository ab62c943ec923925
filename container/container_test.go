package container

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ivanzzeth/go-locking-containers/lock"
)

func TestContainerReaderFanOut(t *testing.T) {
	c := New(7)

	acquired := make(chan int, 10)
	release := make(chan struct{})

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			p := c.AcquireRead(true)
			if !p.Valid() {
				t.Error("read acquisition failed")
				acquired <- 0
				return nil
			}
			if got := *p.Value(); got != 7 {
				t.Errorf("read %d, want 7", got)
			}
			acquired <- p.LastLockCount()
			<-release
			p.Clear()
			return nil
		})
	}

	for i := 0; i < 10; i++ {
		n := <-acquired
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 10)
	}
	close(release)
	require.NoError(t, g.Wait())

	// Everyone released: a write proxy is obtainable again.
	w := c.AcquireWrite(false)
	require.True(t, w.Valid())
	w.Clear()
}

func TestContainerWriteExcludesRead(t *testing.T) {
	c := New("guarded")

	w := c.AcquireWrite(true)
	require.True(t, w.Valid())
	*w.Value() = "changed"

	r := c.AcquireRead(false)
	require.False(t, r.Valid())
	require.Nil(t, r.Value())

	w.Clear()

	r = c.AcquireRead(false)
	require.True(t, r.Valid())
	require.Equal(t, "changed", *r.Value())
	r.Clear()
}

func TestContainerWriterPriority(t *testing.T) {
	c := New(0)

	r1 := c.AcquireRead(true)
	require.True(t, r1.Valid())

	order := make(chan string, 2)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		auth := c.NewAuth()
		w := c.AcquireWriteAuth(auth, true)
		if !w.Valid() {
			return
		}
		order <- "writer"
		w.Clear()
		auth.Close()
	}()

	// Wait until the writer is queued: with a writer waiting, a
	// non-blocking read fails.
	require.Eventually(t, func() bool {
		p := c.AcquireRead(false)
		if p.Valid() {
			p.Clear()
			return false
		}
		return true
	}, time.Second, time.Millisecond)

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		r := c.AcquireRead(true)
		if !r.Valid() {
			return
		}
		order <- "reader"
		r.Clear()
	}()

	select {
	case <-readerDone:
		t.Fatal("second reader finished before the queued writer")
	case <-time.After(50 * time.Millisecond):
	}

	r1.Clear()
	<-writerDone
	<-readerDone
	require.Equal(t, "writer", <-order)
	require.Equal(t, "reader", <-order)
}

func TestContainerDeadlockRefusal(t *testing.T) {
	a := New(0, WithName("a"))
	b := New(0, WithName("b"))

	auth := a.NewAuth()
	ra := a.AcquireReadAuth(auth, true)
	require.True(t, ra.Valid())

	// Park a writer on b behind a reader so b reports a lock-out.
	rb := b.AcquireRead(true)
	require.True(t, rb.Valid())
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		w := b.AcquireWrite(true)
		if w.Valid() {
			w.Clear()
		}
	}()
	require.Eventually(t, func() bool {
		p := b.AcquireRead(false)
		if p.Valid() {
			p.Clear()
			return false
		}
		return true
	}, time.Second, time.Millisecond)

	// Holding a read on a, the blocking write on b is downgraded to
	// non-blocking and fails at once instead of waiting.
	start := time.Now()
	wb := b.AcquireWriteAuth(auth, true)
	require.False(t, wb.Valid())
	require.Less(t, time.Since(start), 500*time.Millisecond)

	// b's lock state is untouched by the refusal: the parked writer still
	// completes once the reader leaves.
	ra.Clear()
	rb.Clear()
	<-writerDone
	auth.Close()
}

func TestContainerBrokenLock(t *testing.T) {
	c := New(1, WithLock(lock.NewBrokenLock()))

	require.False(t, c.AcquireWrite(true).Valid())
	require.False(t, c.AcquireRead(true).Valid())
	require.False(t, c.AcquireWriteAuth(c.NewAuth(), true).Valid())

	// Nothing ever locked, so Close completes cleanly.
	c.Close()
}

func TestContainerClose(t *testing.T) {
	c := New(1)

	p := c.AcquireWrite(true)
	require.True(t, p.Valid())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		c.Close()
	}()

	select {
	case <-closed:
		t.Fatal("Close returned with an outstanding proxy")
	case <-time.After(50 * time.Millisecond):
	}

	p.Clear()
	<-closed
}

func TestContainerSetAndCopyFrom(t *testing.T) {
	a := New(1)
	b := New(2)

	a.Set(42)
	r := a.AcquireRead(true)
	require.Equal(t, 42, *r.Value())
	r.Clear()

	a.CopyFrom(b)
	r = a.AcquireRead(true)
	require.Equal(t, 2, *r.Value())
	r.Clear()

	// Self-copy is a no-op instead of a deadlock.
	a.CopyFrom(a)

	// Assignment on an unlockable container is fatal.
	broken := New(0, WithLock(lock.NewBrokenLock()))
	require.Panics(t, func() { broken.Set(1) })
	require.Panics(t, func() { broken.CopyFrom(a) })
	require.Panics(t, func() { a.CopyFrom(broken) })
}

func TestContainerNewAuthMatchesLock(t *testing.T) {
	require.IsType(t, &lock.RWAuth{}, New(0).NewAuth())
	require.IsType(t, &lock.RAuth{}, New(0, WithLock(lock.NewRLock())).NewAuth())
	require.IsType(t, &lock.WAuth{}, New(0, WithLock(lock.NewWLock())).NewAuth())
	require.IsType(t, &lock.DumbAuth{}, New(0, WithLock(lock.NewDumbLock())).NewAuth())
	require.IsType(t, &lock.BrokenAuth{}, New(0, WithLock(lock.NewBrokenLock())).NewAuth())
	require.IsType(t, &lock.OrderedAuth{}, New(0, WithLock(lock.NewRWLock(lock.WithOrder(1)))).NewAuth())
}

func TestContainerNames(t *testing.T) {
	a := New(0)
	b := New(0)
	require.True(t, strings.HasPrefix(a.Name(), "container-"))
	require.NotEqual(t, a.Name(), b.Name())

	named := New(0, WithName("inventory"))
	require.Equal(t, "inventory", named.Name())
}

func TestContainerLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	c := New(0, WithName("logged"), WithLogger(&logger))
	p := c.AcquireWrite(true)
	require.True(t, p.Valid())
	p.Clear()

	require.Contains(t, buf.String(), "Proxy acquired")
	require.Contains(t, buf.String(), "Proxy released")

	r := c.AcquireRead(false)
	require.True(t, r.Valid())
	require.False(t, c.AcquireWrite(false).Valid())
	require.Contains(t, buf.String(), "Acquisition refused")
	r.Clear()
}
