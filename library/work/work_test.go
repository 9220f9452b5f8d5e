package work

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAntsLoop(t *testing.T) {
	l := NewAntsLoop(2)
	err := l.Start()
	require.NoError(t, err)
	defer l.Stop()

	t.Run("start more times", func(t *testing.T) {
		err = l.Start()
		require.NoError(t, err)
	})

	t.Run("Post simple task", func(t *testing.T) {
		done := make(chan struct{})
		l.Post(func() {
			close(done)
		})
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task not finished")
		}
	})

	t.Run("PostAndWait returns expected value", func(t *testing.T) {
		val, err := l.PostAndWait(func() ([]byte, error) {
			return []byte("hello"), nil
		})
		require.NoError(t, err)
		require.Equal(t, []byte("hello"), val)
	})

	t.Run("Post panic inside job is recovered", func(t *testing.T) {
		done := make(chan struct{})
		l.Post(func() {
			defer close(done)
			panic("oops")
		})
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("panic job did not finish")
		}
	})

	t.Run("fallback when stopped", func(t *testing.T) {
		l.Stop()
		// Stop 异步释放，等一会
		time.Sleep(100 * time.Millisecond)

		executed := make(chan struct{})
		l.PostCtx(context.Background(), func() {
			close(executed)
		})

		select {
		case <-executed:
		case <-time.After(time.Second):
			t.Fatal("fallback job did not run")
		}
		err := l.Start()
		require.NoError(t, err)
	})

	t.Run("context cancel works in PostAndWaitCtx", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := l.PostAndWaitCtx(ctx, func() ([]byte, error) {
			time.Sleep(200 * time.Millisecond)
			return []byte("slow"), nil
		})
		require.Error(t, err)
		require.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestSerialOrder(t *testing.T) {
	l := NewAntsLoop(1)
	require.NoError(t, l.Start())
	defer l.Stop()

	var got []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() {
			got = append(got, i)
			if i == 9 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("jobs did not finish")
	}
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestScheduler(t *testing.T) {
	s := NewScheduler(WithTick(10 * time.Millisecond))
	defer s.Stop()

	t.Run("Once fires", func(t *testing.T) {
		done := make(chan struct{})
		s.Once(30*time.Millisecond, func() { close(done) })
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("once task did not fire")
		}
	})

	t.Run("Cancel prevents firing", func(t *testing.T) {
		var fired atomic.Bool
		id := s.Once(50*time.Millisecond, func() { fired.Store(true) })
		s.Cancel(id)
		time.Sleep(120 * time.Millisecond)
		require.False(t, fired.Load())
	})

	t.Run("Forever repeats", func(t *testing.T) {
		var n atomic.Int32
		id := s.Forever(20*time.Millisecond, func() { n.Add(1) })
		time.Sleep(150 * time.Millisecond)
		s.Cancel(id)
		require.GreaterOrEqual(t, n.Load(), int32(2))
	})
}
