package idx_test

import (
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/clientdesk/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, b := idx.New(), idx.New()
	require.Len(t, a.String(), 26)
	require.NotEqual(t, a, b)
}

func TestOrdering(t *testing.T) {
	a := idx.NewAt(time.Unix(1, 0).UTC())
	b := idx.NewAt(time.Unix(2, 0).UTC())

	// Later timestamps sort later as plain strings.
	require.Less(t, a.String(), b.String())
}

func TestNewConcurrent(t *testing.T) {
	const workers, perWorker = 8, 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[idx.ID]struct{}, workers*perWorker)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id := idx.New()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
}
