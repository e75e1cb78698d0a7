package models

// request payloads of the wallet backend API

type SignupRequest struct {
	TelegramID   string `json:"telegramId"`
	Username     string `json:"username"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
	Password     string `json:"password"`
}

type BalanceRequest struct {
	TelegramID  string `json:"telegramId"`
	Password    string `json:"password"`
	WalletIndex int    `json:"walletIndex"`
}

type TransferRequest struct {
	TelegramID      string  `json:"telegramId"`
	Password        string  `json:"password"`
	ReceiverAddress string  `json:"receiverAddress"`
	Amount          float64 `json:"amount"`
	WalletIndex     int     `json:"walletIndex"`
}

type SwitchNetworkRequest struct {
	TelegramID string `json:"telegramId"`
	Password   string `json:"password"`
	Network    string `json:"network"`
	RpcURL     string `json:"rpcUrl,omitempty"`
}

// BackendError is the structured error body the backend returns on any
// non-success status.
type BackendError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// results of one backend call
const (
	CallSuccess        = "success"
	CallUserError      = "user_error"
	CallTransportError = "transport_error"
)

// CallOutcome is what a single backend call produced. Result is always set;
// Message/Details are set for user errors, the payload fields for successes
// of the respective flow.
type CallOutcome struct {
	Result  string
	Message string
	Details string

	PublicKey string
	Balance   string
	Signature string
	Network   string
}

func Success() *CallOutcome {
	return &CallOutcome{Result: CallSuccess}
}

func UserError(message, details string) *CallOutcome {
	return &CallOutcome{Result: CallUserError, Message: message, Details: details}
}

func TransportError() *CallOutcome {
	return &CallOutcome{Result: CallTransportError}
}
