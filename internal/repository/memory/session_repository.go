package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/CustomGPTer/RAMS-Generator/internal/entity"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/CustomGPTer/RAMS-Generator/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type Option func(*SessionRepository)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(r *SessionRepository) { r.now = now }
}

// SessionRepository keeps sessions in process memory. Every operation runs
// under one mutex so answers for a session are applied one at a time.
type SessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(ttl, cleanupInterval time.Duration, opts ...Option) *SessionRepository {
	r := &SessionRepository{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SessionRepository) Create(ctx context.Context, task string, questions []string) (*entity.Session, error) {
	if strings.TrimSpace(task) == "" {
		return nil, apperror.Validation("task must not be empty")
	}
	if len(questions) == 0 {
		return nil, apperror.Validation("a session needs at least one question")
	}

	now := r.now()
	s := &entity.Session{
		ID:         uuid.NewString(),
		Task:       task,
		Questions:  append([]string(nil), questions...),
		Answers:    make([]string, 0, len(questions)),
		LastActive: now,
		CreatedAt:  now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
	return s.Clone(), nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(id)
	if err != nil {
		return nil, err
	}
	r.touch(s)
	return s.Clone(), nil
}

func (r *SessionRepository) AppendAnswer(ctx context.Context, id, answer string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if s.IsComplete() {
		return nil, apperror.Conflict("all questions have already been answered")
	}
	s.Answers = append(s.Answers, answer)
	r.touch(s)
	return s.Clone(), nil
}

func (r *SessionRepository) Claim(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if !s.IsComplete() {
		return nil, apperror.Conflict("session not complete")
	}
	if s.Generating {
		return nil, apperror.Conflict("document generation already in progress")
	}
	s.Generating = true
	r.touch(s)
	return s.Clone(), nil
}

// Release clears a claim. A session that is already gone is not an error.
func (r *SessionRepository) Release(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(id)
	if err != nil {
		return nil
	}
	s.Generating = false
	r.touch(s)
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(id)
	return nil
}

// Sweep removes every session idle for longer than the TTL and returns how
// many were removed.
func (r *SessionRepository) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, item := range r.cache.Items() {
		s := item.Object.(*entity.Session)
		if now.Sub(s.LastActive) > r.ttl {
			r.cache.Delete(id)
			removed++
		}
	}
	r.cache.DeleteExpired()
	return removed
}

// load must be called with mu held.
func (r *SessionRepository) load(id string) (*entity.Session, error) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, apperror.ErrNotFound
	}
	s := x.(*entity.Session)
	if r.now().Sub(s.LastActive) > r.ttl {
		r.cache.Delete(id)
		return nil, apperror.ErrNotFound
	}
	return s, nil
}

func (r *SessionRepository) touch(s *entity.Session) {
	s.LastActive = r.now()
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
}

// Sweeper is the part of a session store the background sweep needs.
type Sweeper interface {
	Sweep(now time.Time) int
}

// RunSweeper calls Sweep every interval until ctx is done. onSweep, when
// set, is told how many sessions each non-empty sweep removed.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration, log logger.ILogger, onSweep func(removed int)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			removed := s.Sweep(now)
			if removed == 0 {
				continue
			}
			log.Info("SESSION", "expired sessions removed", map[string]interface{}{
				"removed": removed,
			})
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
