package presenter

import (
	"context"

	"bot/app/models"
)

type Service interface {
	HandleEvent(ctx context.Context, event *models.InboundEvent) (*models.Reply, error)
}
