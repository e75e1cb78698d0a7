package session

import (
	"context"

	"bot/app/models"
	"bot/app/storage/database"
)

// Durable persists sessions in the database, so conversations survive a
// process restart.
type Durable struct {
	DB database.Database
}

func (d *Durable) GetOrCreate(ctx context.Context, userID string) (*models.Session, error) {
	session, err := d.DB.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}

	session = models.NewSession(userID)
	if err := d.DB.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (d *Durable) Save(ctx context.Context, session *models.Session) error {
	return d.DB.SaveSession(ctx, session)
}

func (d *Durable) Active(ctx context.Context) (int, error) {
	return d.DB.CountActiveSessions(ctx)
}
