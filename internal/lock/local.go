package lock

import (
	"context"
	"sync"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

// Local serializes work per key inside one process. Entries are dropped
// once nobody holds or waits for the key.
type Local struct {
	mutex sync.Mutex
	keys  map[string]*keyLock
}

func NewLocal() *Local {
	return &Local{keys: make(map[string]*keyLock)}
}

// Lock blocks until the key is free or ctx is done.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mutex.Lock()
	kl, exists := l.keys[key]
	if !exists {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.keys[key] = kl
	}
	kl.refs++
	l.mutex.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *Local) release(key string, kl *keyLock) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.keys, key)
	}
}

// size returns the number of tracked keys.
func (l *Local) size() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.keys)
}
