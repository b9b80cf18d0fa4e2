package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrPersisterClosed = errors.New("persister closed")

// KeyValueStore is the durable blob store behind presets and theme selection.
//
//go:generate mockgen -source=persister.go -destination=mock_kv_test.go -package=service
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// SaveResult is the outcome of one durable write. Callers may wait on it or
// drop it; the in-memory state it belongs to is already visible either way.
type SaveResult struct {
	done chan struct{}
	err  error
}

func newSaveResult() *SaveResult {
	return &SaveResult{done: make(chan struct{})}
}

func (r *SaveResult) resolve(err error) {
	r.err = err
	close(r.done)
}

func (r *SaveResult) Done() <-chan struct{} {
	return r.done
}

// Err returns the write error. It is only meaningful after Done is closed.
func (r *SaveResult) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

func (r *SaveResult) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pendingWrite is the newest value queued for a key plus every caller whose
// write it supersedes.
type pendingWrite struct {
	value   []byte
	results []*SaveResult
}

// Persister applies writes to a KeyValueStore from one goroutine. Each value
// is a full snapshot for its key, so a write still waiting in the queue is
// replaced by a newer one for the same key and both callers get the outcome
// of the newer write. Save never blocks.
type Persister struct {
	kv      KeyValueStore
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	closed  bool
	order   []string
	pending map[string]*pendingWrite
	wake    chan struct{}
	done    chan struct{}
}

func NewPersister(kv KeyValueStore, timeout time.Duration, logger *slog.Logger) *Persister {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	p := &Persister{
		kv:      kv,
		timeout: timeout,
		logger:  logger,
		pending: make(map[string]*pendingWrite),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Save queues value under key. The copy of value is taken before returning.
func (p *Persister) Save(key string, value []byte) *SaveResult {
	result := newSaveResult()
	value = append([]byte(nil), value...)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		result.resolve(ErrPersisterClosed)
		return result
	}
	if write, ok := p.pending[key]; ok {
		write.value = value
		write.results = append(write.results, result)
	} else {
		p.pending[key] = &pendingWrite{value: value, results: []*SaveResult{result}}
		p.order = append(p.order, key)
	}
	p.mu.Unlock()

	p.signal()
	return result
}

// Close stops accepting writes and waits for queued ones to finish.
func (p *Persister) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.signal()
	<-p.done
}

func (p *Persister) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest pending key. It reports false once the queue is empty
// and the persister is closed.
func (p *Persister) next() (string, *pendingWrite, bool) {
	for {
		p.mu.Lock()
		if len(p.order) > 0 {
			key := p.order[0]
			p.order = p.order[1:]
			write := p.pending[key]
			delete(p.pending, key)
			p.mu.Unlock()
			return key, write, true
		}
		closed := p.closed
		p.mu.Unlock()

		if closed {
			return "", nil, false
		}
		<-p.wake
	}
}

func (p *Persister) run() {
	defer close(p.done)

	for {
		key, write, ok := p.next()
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.kv.Set(ctx, key, write.value)
		cancel()

		if err != nil {
			err = fmt.Errorf("persist %s: %w", key, err)
			p.logger.Error("durable write failed", "key", key, "coalesced", len(write.results), "error", err)
		}
		for _, result := range write.results {
			result.resolve(err)
		}
	}
}

// resolvedSave is a SaveResult for writes that never reached the queue.
func resolvedSave(err error) *SaveResult {
	result := newSaveResult()
	result.resolve(err)
	return result
}
