package locks

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	km := NewKeyedMutex(time.Second)

	release, err := km.Acquire("ticket-1")
	require.NoError(t, err)
	release()

	// Released key is reacquirable.
	release, err = km.Acquire("ticket-1")
	require.NoError(t, err)
	release()
}

func TestAcquireTimesOutWhileHeld(t *testing.T) {
	km := NewKeyedMutex(50 * time.Millisecond)

	release, err := km.Acquire("ticket-1")
	require.NoError(t, err)
	defer release()

	_, err = km.Acquire("ticket-1")
	require.ErrorIs(t, err, ErrAcquireTimeout)
}

func TestDistinctKeysDoNotContend(t *testing.T) {
	km := NewKeyedMutex(50 * time.Millisecond)

	releaseA, err := km.Acquire("ticket-1")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := km.Acquire("ticket-2")
	require.NoError(t, err)
	releaseB()
}

func TestWaiterProceedsAfterRelease(t *testing.T) {
	km := NewKeyedMutex(time.Second)

	release, err := km.Acquire("stockpile-1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := km.Acquire("stockpile-1")
		if err == nil {
			r()
		}
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock")
	}
}

func TestMutualExclusion(t *testing.T) {
	km := NewKeyedMutex(5 * time.Second)

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := km.Acquire("shared")
			if err != nil {
				t.Error(err)
				return
			}
			defer release()
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	require.Equal(t, 20, counter)
}
