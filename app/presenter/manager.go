package presenter

import (
	"context"
	"fmt"

	"bot/app/engine"
	"bot/app/models"
)

const (
	networkErrorText = "🔴 Network error. Please try again later."

	signupSuccessTemplate = "🎉 Wallet created successfully!\n\n" +
		"🔑 Your wallet details have been generated securely. " +
		"Please keep your mnemonic and private key safe.\n\n" +
		"🔐 Public Key: %s"
	balanceSuccessTemplate  = "💰 Balance: %s SOL"
	transferSuccessTemplate = "✅ Transfer successful!\nTransaction Signature: %s"
	switchSuccessTemplate   = "✅ Switched to %s network successfully!"
	customSwitchSuccessText = "✅ Custom network switched successfully!"
)

// Manager turns engine outcomes into outbound replies. The mapping is
// deterministic: same outcome, same text.
type Manager struct {
	Engine engine.Service
}

func (m *Manager) HandleEvent(ctx context.Context, event *models.InboundEvent) (*models.Reply, error) {
	outcome, err := m.Engine.HandleEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	return m.Render(outcome), nil
}

// Render maps an outcome to the reply to send; nil means "send nothing".
func (m *Manager) Render(outcome *models.Outcome) *models.Reply {
	switch outcome.Kind {
	case models.OutcomePrompt, models.OutcomeReject:
		return &models.Reply{Text: outcome.Text, Options: outcome.Options}
	case models.OutcomeMissing:
		return &models.Reply{
			Text: fmt.Sprintf("Error: Missing input. Please restart with /%s.", outcome.Flow),
		}
	case models.OutcomeResult:
		return m.renderResult(outcome.Flow, outcome.Call)
	}
	return nil
}

func (m *Manager) renderResult(flow models.FlowName, call *models.CallOutcome) *models.Reply {
	switch call.Result {
	case models.CallUserError:
		text := fmt.Sprintf("❌ %s", call.Message)
		if call.Details != "" {
			text += fmt.Sprintf("\n📝 Details: %s", call.Details)
		}
		return &models.Reply{Text: text}
	case models.CallTransportError:
		return &models.Reply{Text: networkErrorText}
	}

	switch flow {
	case models.FlowSignup:
		return &models.Reply{Text: fmt.Sprintf(signupSuccessTemplate, call.PublicKey)}
	case models.FlowBalance:
		return &models.Reply{Text: fmt.Sprintf(balanceSuccessTemplate, call.Balance)}
	case models.FlowTransfer:
		return &models.Reply{Text: fmt.Sprintf(transferSuccessTemplate, call.Signature)}
	case models.FlowSwitchNetwork:
		if call.Network == "custom" {
			return &models.Reply{Text: customSwitchSuccessText}
		}
		return &models.Reply{Text: fmt.Sprintf(switchSuccessTemplate, call.Network)}
	}
	return nil
}
