package walletapi

import (
	"context"

	"bot/app/models"
)

type Service interface {
	Signup(ctx context.Context, in *models.SignupRequest) (*models.CallOutcome, error)
	Balance(ctx context.Context, in *models.BalanceRequest) (*models.CallOutcome, error)
	Transfer(ctx context.Context, in *models.TransferRequest) (*models.CallOutcome, error)
	SwitchNetwork(ctx context.Context, in *models.SwitchNetworkRequest) (*models.CallOutcome, error)
}
