package session

import (
	"context"

	"bot/app/models"
)

type Service interface {
	// GetOrCreate never fails to produce a session for a known-good store:
	// a fresh idle session is created on first use.
	GetOrCreate(ctx context.Context, userID string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	// Active reports the number of sessions with a flow in progress.
	Active(ctx context.Context) (int, error)
}
