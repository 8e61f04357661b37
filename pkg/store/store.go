package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"genai-chatbot-be/internal/entity"

	"github.com/google/uuid"
)

var (
	// ErrUnavailable is returned by every operation of the null store.
	ErrUnavailable = errors.New("context store unavailable")
	// ErrInvalidDriver is returned by the factory for unknown drivers.
	ErrInvalidDriver = errors.New("invalid context store driver")
)

// Error wraps a backend failure with the operation and driver that produced it.
type Error struct {
	Driver string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %s: %v", e.Driver, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(driver, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Driver: driver, Op: op, Err: err}
}

// ContextStore is the durable record of past turns per session.
// Implementations must be safe for concurrent use.
type ContextStore interface {
	// AppendTurn persists a new turn and returns its id.
	AppendTurn(ctx context.Context, turn *entity.ChatTurn) (uuid.UUID, error)

	// GetTurns returns all turns of a session ordered by creation time, oldest first.
	GetTurns(ctx context.Context, sessionID string) ([]*entity.ChatTurn, error)

	// GetRecentTurns returns at most limit of the newest turns, oldest first.
	GetRecentTurns(ctx context.Context, sessionID string, limit int) ([]*entity.ChatTurn, error)

	// GetLatestDocumentContext returns the newest non-empty document context
	// stored for the session, or nil if no turn carried one.
	GetLatestDocumentContext(ctx context.Context, sessionID string) (*string, error)

	// ListSessionIDs returns the distinct session ids, ascending.
	ListSessionIDs(ctx context.Context) ([]string, error)

	Name() string
	Close() error
}

func cloneTurn(t *entity.ChatTurn) *entity.ChatTurn {
	c := *t
	if t.DocumentContext != nil {
		docCtx := *t.DocumentContext
		c.DocumentContext = &docCtx
	}
	return &c
}

func sortTurns(turns []*entity.ChatTurn) {
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].CreatedAt.Before(turns[j].CreatedAt)
	})
}

// tailTurns keeps the last limit turns of an ordered slice.
func tailTurns(turns []*entity.ChatTurn, limit int) []*entity.ChatTurn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}

func latestDocumentContext(turns []*entity.ChatTurn) *string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].HasDocumentContext() {
			docCtx := *turns[i].DocumentContext
			return &docCtx
		}
	}
	return nil
}
