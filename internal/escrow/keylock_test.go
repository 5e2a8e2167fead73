package escrow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	kl := newKeyLock()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("req-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyLockIndependentKeys(t *testing.T) {
	kl := newKeyLock()

	unlockA := kl.Lock("req-a")
	// 不同key不互斥，否则这里会死锁
	unlockB := kl.Lock("req-b")
	unlockB()
	unlockA()
}

func TestKeyLockReleasesEntries(t *testing.T) {
	kl := newKeyLock()

	unlock := kl.Lock("req-1")
	unlock()

	kl.mu.Lock()
	defer kl.mu.Unlock()
	assert.Empty(t, kl.locks)
}
