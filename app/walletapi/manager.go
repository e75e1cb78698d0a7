package walletapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"

	"bot/app/config"
	"bot/app/models"
	"bot/pkg/log"
)

const (
	apiKeyHeader = "x-api-key"

	signupPath        = "/api/signup"
	balancePath       = "/api/balance"
	transferPath      = "/api/transfer"
	switchNetworkPath = "/api/network/switch"
)

// Manager talks to the wallet-custody backend. Exactly one request is made
// per call, no retries: a failed call surfaces to the user right away.
type Manager struct {
	Config     config.WalletBackend
	HttpClient *http.Client
}

type signupResponse struct {
	PublicKey string `json:"publicKey"`
}

type balanceResponse struct {
	Balance json.Number `json:"balance"`
}

type transferResponse struct {
	Signature string `json:"signature"`
}

func (m *Manager) Signup(ctx context.Context, in *models.SignupRequest) (*models.CallOutcome, error) {
	payload := new(signupResponse)
	outcome, err := m.post(ctx, signupPath, in, http.StatusCreated, payload)
	if err != nil {
		return nil, err
	}
	if outcome.Result == models.CallSuccess {
		outcome.PublicKey = payload.PublicKey
	}
	return outcome, nil
}

func (m *Manager) Balance(ctx context.Context, in *models.BalanceRequest) (*models.CallOutcome, error) {
	payload := new(balanceResponse)
	outcome, err := m.post(ctx, balancePath, in, http.StatusOK, payload)
	if err != nil {
		return nil, err
	}
	if outcome.Result == models.CallSuccess {
		outcome.Balance = payload.Balance.String()
	}
	return outcome, nil
}

func (m *Manager) Transfer(ctx context.Context, in *models.TransferRequest) (*models.CallOutcome, error) {
	payload := new(transferResponse)
	outcome, err := m.post(ctx, transferPath, in, http.StatusOK, payload)
	if err != nil {
		return nil, err
	}
	if outcome.Result == models.CallSuccess {
		outcome.Signature = payload.Signature
	}
	return outcome, nil
}

func (m *Manager) SwitchNetwork(ctx context.Context, in *models.SwitchNetworkRequest) (*models.CallOutcome, error) {
	// no payload is used on success, the presenter renders a fixed text
	outcome, err := m.post(ctx, switchNetworkPath, in, http.StatusOK, nil)
	if err != nil {
		return nil, err
	}
	if outcome.Result == models.CallSuccess {
		outcome.Network = in.Network
	}
	return outcome, nil
}

func (m *Manager) post(
	ctx context.Context,
	path string,
	payload interface{},
	wantStatus int,
	result interface{},
) (*models.CallOutcome, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal a request body")
	}

	req, err := http.NewRequest(http.MethodPost, m.Config.BasePath+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create a post request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	if m.Config.ApiKey != "" {
		req.Header.Set(apiKeyHeader, m.Config.ApiKey)
	}

	resp, err := m.HttpClient.Do(req)
	if err != nil {
		log.Errorw("failed to perform a request to the wallet backend", "path", path, "error", err.Error())
		return models.TransportError(), nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		log.Errorw("failed to read a response body from the wallet backend", "path", path, "error", err.Error())
		return models.TransportError(), nil
	}
	log.AddFields(ctx, "backendPath", path, "backendStatus", resp.StatusCode)

	if resp.StatusCode == wantStatus {
		if result != nil {
			if err = json.Unmarshal(respBody, result); err != nil {
				log.Errorw("failed to unmarshal a response from the wallet backend", "path", path, "error", err.Error())
				return models.TransportError(), nil
			}
		}
		return models.Success(), nil
	}

	// a structured error body means the backend rejected the request
	backendErr := new(models.BackendError)
	if err = json.Unmarshal(respBody, backendErr); err != nil || backendErr.Error == "" {
		log.Errorw("unexpected response from the wallet backend", "path", path, "status", resp.StatusCode)
		return models.TransportError(), nil
	}
	return models.UserError(backendErr.Error, backendErr.Details), nil
}
