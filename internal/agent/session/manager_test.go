package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginTurn_EvictsLockAfterRelease(t *testing.T) {
	m := NewManager()

	_, release := m.BeginTurn("s1")
	assert.Equal(t, 1, m.active())

	release()
	assert.Zero(t, m.active())
}

func TestBeginTurn_KeepsLockWhileTurnsWait(t *testing.T) {
	m := NewManager()

	_, release1 := m.BeginTurn("s1")

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		_, release2 := m.BeginTurn("s1")
		release2()
		close(done)
	}()

	<-started
	// The waiter has registered; the entry must survive the first release.
	release1()
	<-done
	assert.Zero(t, m.active())
}

func TestBeginTurn_SerializesSameSession(t *testing.T) {
	m := NewManager()

	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, release := m.BeginTurn("s1")
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			mu.Lock()
			active--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
	assert.Zero(t, m.active())
}

func TestBeginTurn_DistinctSessionsDoNotBlockEachOther(t *testing.T) {
	m := NewManager()

	_, release1 := m.BeginTurn("s1")
	defer release1()

	done := make(chan struct{})
	go func() {
		_, release2 := m.BeginTurn("s2")
		release2()
		close(done)
	}()
	<-done

	require.Equal(t, 1, m.active())
}

func TestBeginTurn_FreshCacheEachTurn(t *testing.T) {
	m := NewManager()

	cache1, release := m.BeginTurn("s1")
	release()
	cache2, release := m.BeginTurn("s1")
	release()

	assert.NotSame(t, cache1, cache2)
}
