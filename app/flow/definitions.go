package flow

import (
	"context"
	"strconv"

	"bot/app/models"
	"bot/app/walletapi"
)

// Signup collects a password and a wallet name, then registers the user.
func Signup() *Definition {
	return &Definition{
		Name:    models.FlowSignup,
		Command: "signup",
		Steps: []Step{
			{
				Field: models.FieldPassword,
				Prompt: "🚀 Welcome to Solana Wallet Signup!\n" +
					"Please enter a secure password to create your wallet:",
				Retry:    "Password cannot be empty. Please enter a valid password:",
				Validate: validateNonEmpty,
			},
			{
				Field:    models.FieldWalletName,
				Prompt:   "Great! Now, please enter a name for your wallet:",
				Retry:    "Wallet name cannot be empty. Please enter a valid name:",
				Validate: validateNonEmpty,
			},
		},
		Missing: requireFields(models.FieldPassword, models.FieldWalletName),
		Finish: func(
			ctx context.Context,
			client walletapi.Service,
			user *models.User,
			fields models.Fields,
		) (*models.CallOutcome, error) {
			return client.Signup(ctx, &models.SignupRequest{
				TelegramID:   user.TelegramID,
				Username:     user.Username,
				FirstName:    user.FirstName,
				LastName:     user.LastName,
				LanguageCode: user.LanguageCode,
				Name:         fields[models.FieldWalletName],
				Password:     fields[models.FieldPassword],
			})
		},
	}
}

// Balance asks for a wallet index and the password, then checks the balance.
func Balance() *Definition {
	return &Definition{
		Name:    models.FlowBalance,
		Command: "balance",
		Steps: []Step{
			{
				Field:    models.FieldWalletIndex,
				Prompt:   "🏦 Enter the wallet index to check balance:",
				Retry:    "❌ Invalid wallet index. Please enter a non-negative number:",
				Validate: validateWalletIndex,
			},
			{
				Field:    models.FieldPassword,
				Prompt:   "🔑 Enter your password to check the balance:",
				Retry:    "Password cannot be empty. Please enter a valid password:",
				Validate: validateNonEmpty,
			},
		},
		Missing: requireFields(models.FieldPassword),
		Finish: func(
			ctx context.Context,
			client walletapi.Service,
			user *models.User,
			fields models.Fields,
		) (*models.CallOutcome, error) {
			index := 0 // first wallet unless the user picked another one
			if collected, ok := fields[models.FieldWalletIndex]; ok {
				index, _ = strconv.Atoi(collected)
			}
			return client.Balance(ctx, &models.BalanceRequest{
				TelegramID:  user.TelegramID,
				Password:    fields[models.FieldPassword],
				WalletIndex: index,
			})
		},
	}
}

// Transfer collects the receiver, the amount and the password, then sends SOL.
func Transfer() *Definition {
	return &Definition{
		Name:    models.FlowTransfer,
		Command: "transfer",
		Steps: []Step{
			{
				Field:    models.FieldReceiver,
				Prompt:   "💸 Enter receiver's wallet address:",
				Retry:    "Receiver address cannot be empty. Please enter a valid address:",
				Validate: validateNonEmpty,
			},
			{
				Field:    models.FieldAmount,
				Prompt:   "💰 Enter amount of SOL to transfer:",
				Retry:    "❌ Invalid amount. Please enter a valid number.",
				Validate: validateAmount,
			},
			{
				Field:    models.FieldPassword,
				Prompt:   "🔑 Enter your password to confirm the transfer:",
				Retry:    "Password cannot be empty. Please enter a valid password:",
				Validate: validateNonEmpty,
			},
		},
		Missing: requireFields(models.FieldReceiver, models.FieldAmount, models.FieldPassword),
		Finish: func(
			ctx context.Context,
			client walletapi.Service,
			user *models.User,
			fields models.Fields,
		) (*models.CallOutcome, error) {
			amount, _ := strconv.ParseFloat(fields[models.FieldAmount], 64)
			return client.Transfer(ctx, &models.TransferRequest{
				TelegramID:      user.TelegramID,
				Password:        fields[models.FieldPassword],
				ReceiverAddress: fields[models.FieldReceiver],
				Amount:          amount,
				WalletIndex:     0, // transfers always spend from the first wallet
			})
		},
	}
}

// SwitchNetwork picks a network, asks for a custom RPC url when needed, and
// switches after the password is confirmed.
func SwitchNetwork() *Definition {
	const (
		stepNetwork = iota
		stepRpcURL
		stepPassword
	)

	return &Definition{
		Name:    models.FlowSwitchNetwork,
		Command: "switchnetwork",
		Steps: []Step{
			{
				Field:    models.FieldNetwork,
				Prompt:   "🌐 Select a Solana network:",
				Retry:    "❌ Invalid network selected. Please choose from the available options:",
				Options:  networks,
				Validate: validateNetwork,
				Next: func(fields models.Fields) int {
					if fields[models.FieldNetwork] == networkCustom {
						return stepRpcURL
					}
					return stepPassword
				},
			},
			{
				Field:    models.FieldRpcURL,
				Prompt:   "🔗 Enter your custom RPC URL:",
				Retry:    "RPC URL cannot be empty. Please enter a valid URL:",
				Validate: validateNonEmpty,
			},
			{
				Field:    models.FieldPassword,
				Prompt:   "🔑 Enter your password to switch networks:",
				Retry:    "Password cannot be empty. Please enter a valid password:",
				Validate: validateNonEmpty,
			},
		},
		Missing: func(fields models.Fields) []string {
			missing := requireFields(models.FieldNetwork, models.FieldPassword)(fields)
			if fields[models.FieldNetwork] == networkCustom && fields[models.FieldRpcURL] == "" {
				missing = append(missing, models.FieldRpcURL)
			}
			return missing
		},
		Finish: func(
			ctx context.Context,
			client walletapi.Service,
			user *models.User,
			fields models.Fields,
		) (*models.CallOutcome, error) {
			in := &models.SwitchNetworkRequest{
				TelegramID: user.TelegramID,
				Password:   fields[models.FieldPassword],
				Network:    fields[models.FieldNetwork],
			}
			if in.Network == networkCustom {
				in.RpcURL = fields[models.FieldRpcURL]
			}
			return client.SwitchNetwork(ctx, in)
		},
	}
}
