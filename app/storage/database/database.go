package database

import (
	"context"

	"bot/app/models"
)

type Database interface {
	// GetSession returns (nil, nil) when no session exists for the user.
	GetSession(ctx context.Context, userID string) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	CountActiveSessions(ctx context.Context) (int, error)
	Close() error
}
