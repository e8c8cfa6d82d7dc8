package locks

import "sync"

// Keyed hands out one mutex per key. Queue mutations lock by business id,
// conflict checks lock by employee id, so unrelated tenants never contend.
type Keyed struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[uint]*sync.Mutex)}
}

func (k *Keyed) Lock(key uint) {
	k.get(key).Lock()
}

func (k *Keyed) Unlock(key uint) {
	k.get(key).Unlock()
}

func (k *Keyed) get(key uint) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
