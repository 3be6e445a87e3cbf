package relay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_MembershipFollowsAdmitAndEvict(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	a, b, c := newFakePeer("alice"), newFakePeer("bob"), newFakePeer("alice")

	reg.Admit(a)
	reg.Admit(b)
	reg.Admit(c)
	req.Equal(3, reg.Len())
	req.ElementsMatch([]Peer{a, b, c}, reg.Snapshot())

	req.True(reg.Evict(b))
	req.ElementsMatch([]Peer{a, c}, reg.Snapshot())
	req.False(reg.Contains(b))
}

func TestRegistry_AdmitTwiceKeepsOneEntry(t *testing.T) {
	reg := NewRegistry()
	a := newFakePeer("alice")
	reg.Admit(a)
	reg.Admit(a)
	require.Equal(t, 1, reg.Len())
}

func TestRegistry_EvictIsIdempotent(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	a, b := newFakePeer("alice"), newFakePeer("bob")
	reg.Admit(a)

	req.False(reg.Evict(b), "never admitted")
	req.True(reg.Evict(a))
	req.False(reg.Evict(a), "already evicted")
	req.Equal(0, reg.Len())

	reg.Admit(b)
	req.False(reg.Evict(a))
	req.True(reg.Contains(b))
}

func TestRegistry_ConcurrentEvictRemovesExactlyOnce(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	p := newFakePeer("alice")
	reg.Admit(p)

	var wg sync.WaitGroup
	var mu sync.Mutex
	removed := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reg.Evict(p) {
				mu.Lock()
				removed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	req.Equal(1, removed)
	req.Equal(0, reg.Len())
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	a, b := newFakePeer("alice"), newFakePeer("bob")
	reg.Admit(a)
	reg.Admit(b)

	snapshot := reg.Snapshot()
	reg.Evict(a)
	reg.Admit(newFakePeer("carol"))

	req.Len(snapshot, 2)
	req.ElementsMatch([]Peer{a, b}, snapshot)
}

func TestRegistry_ConcurrentAdmitEvictAndSnapshot(t *testing.T) {
	reg := NewRegistry()
	peers := make([]*fakePeer, 64)
	for i := range peers {
		peers[i] = newFakePeer("user")
	}

	var wg sync.WaitGroup
	for _, p := range peers {
		wg.Add(2)
		go func(p *fakePeer) {
			defer wg.Done()
			reg.Admit(p)
		}(p)
		go func() {
			defer wg.Done()
			_ = reg.Snapshot()
		}()
	}
	wg.Wait()
	require.Equal(t, len(peers), reg.Len())

	for i, p := range peers {
		if i%2 == 0 {
			wg.Add(1)
			go func(p *fakePeer) {
				defer wg.Done()
				reg.Evict(p)
			}(p)
		}
	}
	wg.Wait()
	require.Equal(t, len(peers)/2, reg.Len())
}
