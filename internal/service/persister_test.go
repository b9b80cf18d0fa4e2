package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intervals/backend/internal/logger"
	"intervals/backend/internal/repository"
)

type recordingKV struct {
	*repository.MemoryKV

	mu     sync.Mutex
	writes []string
	fail   error
}

func (r *recordingKV) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	r.writes = append(r.writes, string(value))
	fail := r.fail
	r.mu.Unlock()
	if fail != nil {
		return fail
	}
	return r.MemoryKV.Set(ctx, key, value)
}

// blockingKV holds every Set until release is closed, announcing each call
// on started first.
type blockingKV struct {
	*recordingKV
	started chan string
	release chan struct{}
}

func newBlockingKV() *blockingKV {
	return &blockingKV{
		recordingKV: &recordingKV{MemoryKV: repository.NewMemoryKV()},
		started:     make(chan string, 16),
		release:     make(chan struct{}),
	}
}

func (b *blockingKV) Set(ctx context.Context, key string, value []byte) error {
	select {
	case b.started <- key:
	default:
	}
	<-b.release
	return b.recordingKV.Set(ctx, key, value)
}

func TestPersisterAppliesWritesInOrder(t *testing.T) {
	kv := &recordingKV{MemoryKV: repository.NewMemoryKV()}
	persister := NewPersister(kv, time.Second, logger.Discard())

	var results []*SaveResult
	for _, key := range []string{"a", "b", "c", "d"} {
		results = append(results, persister.Save(key, []byte(key)))
	}
	persister.Close()

	for _, result := range results {
		select {
		case <-result.Done():
		default:
			t.Fatal("Close returned before queued writes finished")
		}
		assert.NoError(t, result.Err())
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, kv.writes)
}

func TestPersisterKeepsLatestPendingValuePerKey(t *testing.T) {
	kv := newBlockingKV()
	persister := NewPersister(kv, time.Second, logger.Discard())

	first := persister.Save("presets", []byte("v1"))
	require.Equal(t, "presets", <-kv.started)

	var superseded []*SaveResult
	for _, value := range []string{"v2", "v3", "v4"} {
		superseded = append(superseded, persister.Save("presets", []byte(value)))
	}
	theme := persister.Save("theme", []byte("ocean-breeze"))

	close(kv.release)
	persister.Close()

	assert.NoError(t, first.Err())
	for _, result := range append(superseded, theme) {
		assert.NoError(t, result.Wait(context.Background()))
	}
	assert.Equal(t, []string{"v1", "v4", "ocean-breeze"}, kv.writes)

	stored, err := kv.Get(context.Background(), "presets")
	require.NoError(t, err)
	assert.Equal(t, "v4", string(stored))
}

func TestPersisterSaveNeverBlocks(t *testing.T) {
	kv := newBlockingKV()
	persister := NewPersister(kv, time.Second, logger.Discard())
	defer persister.Close()
	defer close(kv.release)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			persister.Save(fmt.Sprintf("key-%d", i%3), []byte("value"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Save blocked while the store was stalled")
	}
}

func TestPersisterCopiesValue(t *testing.T) {
	kv := repository.NewMemoryKV()
	persister := NewPersister(kv, time.Second, logger.Discard())
	defer persister.Close()

	value := []byte("before")
	save := persister.Save("k", value)
	copy(value, "AFTER!")
	waitSaved(t, save)

	stored, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "before", string(stored))
}

func TestPersisterReportsFailure(t *testing.T) {
	kv := &recordingKV{MemoryKV: repository.NewMemoryKV(), fail: errors.New("read-only filesystem")}
	persister := NewPersister(kv, time.Second, logger.Discard())
	defer persister.Close()

	err := persister.Save("theme", []byte("ocean-breeze")).Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.fail)
	assert.Contains(t, err.Error(), "persist theme")
}

func TestPersisterRejectsAfterClose(t *testing.T) {
	persister := NewPersister(repository.NewMemoryKV(), time.Second, logger.Discard())
	persister.Close()
	persister.Close()

	err := persister.Save("k", []byte("v")).Wait(context.Background())
	assert.ErrorIs(t, err, ErrPersisterClosed)
}

func TestSaveResultWaitHonoursContext(t *testing.T) {
	pending := newSaveResult()
	assert.NoError(t, pending.Err())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pending.Wait(ctx), context.Canceled)

	pending.resolve(nil)
	assert.NoError(t, pending.Wait(context.Background()))
}
