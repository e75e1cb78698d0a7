package flow

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"bot/app/models"
)

const networkCustom = "custom"

var networks = []string{"mainnet-beta", "testnet", "devnet", networkCustom}

func validateNonEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty input provided")
	}
	return text, nil
}

func validateAmount(text string) (string, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return "", errors.Wrap(err, "amount is not a number")
	}
	if !amount.IsPositive() {
		return "", errors.New("amount must be positive")
	}
	return amount.String(), nil
}

func validateWalletIndex(text string) (string, error) {
	index, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return "", errors.Wrap(err, "wallet index is not a number")
	}
	if index < 0 {
		return "", errors.New("wallet index cannot be negative")
	}
	return strconv.Itoa(index), nil
}

func validateNetwork(text string) (string, error) {
	network := strings.TrimSpace(text)
	for _, known := range networks {
		if network == known {
			return network, nil
		}
	}
	return "", errors.Errorf("unknown network: %s", network)
}

// requireFields is the Missing implementation shared by flows without
// conditional steps.
func requireFields(required ...string) func(fields models.Fields) []string {
	return func(fields models.Fields) []string {
		var missing []string
		for _, field := range required {
			if fields[field] == "" {
				missing = append(missing, field)
			}
		}
		return missing
	}
}
