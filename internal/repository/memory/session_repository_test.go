package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newRepo() (*SessionRepository, *clock) {
	c := &clock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	return NewSessionRepository(time.Hour, time.Hour, WithClock(c.Now)), c
}

func questions(n int) []string {
	qs := make([]string, n)
	for i := range qs {
		qs[i] = fmt.Sprintf("Question %d?", i+1)
	}
	return qs
}

func TestCreateAndGet(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()

	s, err := repo.Create(ctx, "Replace roof sheets", questions(3))
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Len(t, s.Questions, 3)
	assert.Empty(t, s.Answers)

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Replace roof sheets", got.Task)

	// copies only
	got.Questions[0] = "changed"
	again, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Question 1?", again.Questions[0])
}

func TestCreateValidation(t *testing.T) {
	repo, _ := newRepo()
	tests := []struct {
		name      string
		task      string
		questions []string
	}{
		{"empty task", "   ", questions(3)},
		{"no questions", "task", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(context.Background(), tt.task, tt.questions)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestIDsAreUnique(t *testing.T) {
	repo, _ := newRepo()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s, err := repo.Create(context.Background(), "task", questions(1))
		require.NoError(t, err)
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
}

func TestAppendAnswerUntilComplete(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()
	s, err := repo.Create(ctx, "task", questions(2))
	require.NoError(t, err)

	s, err = repo.AppendAnswer(ctx, s.ID, "first")
	require.NoError(t, err)
	assert.False(t, s.IsComplete())

	s, err = repo.AppendAnswer(ctx, s.ID, "second")
	require.NoError(t, err)
	assert.True(t, s.IsComplete())
	assert.Equal(t, []string{"first", "second"}, s.Answers)

	_, err = repo.AppendAnswer(ctx, s.ID, "third")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Answers, 2)
}

func TestAppendAnswerUnknownSession(t *testing.T) {
	repo, _ := newRepo()
	_, err := repo.AppendAnswer(context.Background(), "missing", "x")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestConcurrentAppendsAreSerialized(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()
	s, err := repo.Create(ctx, "task", questions(20))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AppendAnswer(ctx, s.ID, fmt.Sprintf("answer %d", i))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, apperror.ErrConflict) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, ok)
	assert.Equal(t, 30, conflicts)
	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Answers, 20)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()
	s, err := repo.Create(ctx, "task", questions(1))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, s.ID))
	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.Get(ctx, s.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestIdleSessionExpires(t *testing.T) {
	repo, c := newRepo()
	ctx := context.Background()
	s, err := repo.Create(ctx, "task", questions(2))
	require.NoError(t, err)

	c.Advance(59 * time.Minute)
	_, err = repo.AppendAnswer(ctx, s.ID, "still here")
	require.NoError(t, err)

	// the append refreshed LastActive
	c.Advance(59 * time.Minute)
	_, err = repo.Get(ctx, s.ID)
	require.NoError(t, err)

	c.Advance(61 * time.Minute)
	_, err = repo.Get(ctx, s.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSweepRemovesOnlyIdleSessions(t *testing.T) {
	repo, c := newRepo()
	ctx := context.Background()
	old, err := repo.Create(ctx, "old", questions(1))
	require.NoError(t, err)

	c.Advance(30 * time.Minute)
	fresh, err := repo.Create(ctx, "fresh", questions(1))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.Sweep(c.Now().Add(31*time.Minute)))

	c.Advance(31 * time.Minute)
	_, err = repo.Get(ctx, old.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = repo.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSweeper) Sweep(time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return 2
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sweeper := &countingSweeper{}
	removed := make(chan int, 16)

	done := make(chan error, 1)
	go func() {
		done <- RunSweeper(ctx, sweeper, 5*time.Millisecond, logger.NewNopLogger(), func(n int) {
			select {
			case removed <- n:
			default:
			}
		})
	}()

	select {
	case n := <-removed:
		assert.Equal(t, 2, n)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestClaimIsExclusive(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()
	s, err := repo.Create(ctx, "task", questions(1))
	require.NoError(t, err)

	_, err = repo.Claim(ctx, s.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "session not complete")

	_, err = repo.AppendAnswer(ctx, s.ID, "done")
	require.NoError(t, err)

	claimed, err := repo.Claim(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, claimed.Generating)

	_, err = repo.Claim(ctx, s.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	require.NoError(t, repo.Release(ctx, s.ID))
	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.Generating)

	_, err = repo.Claim(ctx, s.ID)
	assert.NoError(t, err)
}

func TestConcurrentClaimsGrantOne(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()
	s, err := repo.Create(ctx, "task", questions(1))
	require.NoError(t, err)
	_, err = repo.AppendAnswer(ctx, s.ID, "done")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Claim(ctx, s.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, apperror.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 19, conflicts)
}

func TestReleaseUnknownSession(t *testing.T) {
	repo, _ := newRepo()
	assert.NoError(t, repo.Release(context.Background(), "missing"))
}
