package repository

import (
	"context"
	"sync"
	"time"

	"furnit-storefront/internal/model"
)

// SweepInterval is how often the in-memory store drops expired records nobody asked for.
const SweepInterval = time.Minute

type MemoryResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]model.ResetToken
	now    func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewMemoryResetTokenRepository keeps tokens for the lifetime of the process.
// A restart invalidates every outstanding reset link.
func NewMemoryResetTokenRepository(now func() time.Time) *MemoryResetTokenRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryResetTokenRepository{
		tokens: make(map[string]model.ResetToken),
		now:    now,
		stop:   make(chan struct{}),
	}
}

func (r *MemoryResetTokenRepository) Put(_ context.Context, hash string, record *model.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[hash] = *record
	return nil
}

func (r *MemoryResetTokenRepository) Get(_ context.Context, hash string) (*model.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookup(hash)
}

func (r *MemoryResetTokenRepository) Take(_ context.Context, hash string) (*model.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.lookup(hash)
	if err != nil {
		return nil, err
	}
	delete(r.tokens, hash)
	return record, nil
}

func (r *MemoryResetTokenRepository) Delete(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, hash)
	return nil
}

// lookup must be called with mu held.
func (r *MemoryResetTokenRepository) lookup(hash string) (*model.ResetToken, error) {
	record, ok := r.tokens[hash]
	if !ok {
		return nil, ErrTokenNotFound
	}
	if record.Expired(r.now()) {
		delete(r.tokens, hash)
		return nil, ErrTokenExpired
	}
	return &record, nil
}

// StartSweeper launches the background purge of expired records.
func (r *MemoryResetTokenRepository) StartSweeper(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-r.stop:
				return
			}
		}
	}()
}

func (r *MemoryResetTokenRepository) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for hash, record := range r.tokens {
		if record.Expired(now) {
			delete(r.tokens, hash)
			removed++
		}
	}
	return removed
}

func (r *MemoryResetTokenRepository) Close() {
	close(r.stop)
	r.wg.Wait()
}

func (r *MemoryResetTokenRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
