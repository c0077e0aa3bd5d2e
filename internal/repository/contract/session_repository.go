package contract

import (
	"context"
	"time"

	"github.com/CustomGPTer/RAMS-Generator/internal/entity"
)

// SessionRepository owns questionnaire sessions. Returned sessions are
// copies; mutating them does not touch the stored record.
type SessionRepository interface {
	Create(ctx context.Context, task string, questions []string) (*entity.Session, error)
	Get(ctx context.Context, id string) (*entity.Session, error)
	AppendAnswer(ctx context.Context, id, answer string) (*entity.Session, error)
	// Claim reserves a complete session for document generation. Only one
	// claim can be held at a time; Release gives it back after a failure.
	Claim(ctx context.Context, id string) (*entity.Session, error)
	Release(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Sweep(now time.Time) int
}
