package models

type FlowName string

const (
	FlowNone          FlowName = ""
	FlowSignup        FlowName = "signup"
	FlowBalance       FlowName = "balance"
	FlowTransfer      FlowName = "transfer"
	FlowSwitchNetwork FlowName = "switchnetwork"
)

// StepNone marks a session with no active flow.
const StepNone = -1

// field names collected by the flows
const (
	FieldPassword    = "password"
	FieldWalletName  = "walletName"
	FieldWalletIndex = "walletIndex"
	FieldReceiver    = "receiverAddress"
	FieldAmount      = "amount"
	FieldNetwork     = "network"
	FieldRpcURL      = "rpcUrl"
)

// Fields holds validated step values keyed by field name.
type Fields map[string]string

// Session is the per-user conversation state. Invariant: ActiveFlow is
// FlowNone exactly when CurrentStep is StepNone, and Fields only contains
// values collected by the active flow.
type Session struct {
	UserID      string
	ActiveFlow  FlowName
	CurrentStep int
	Fields      Fields
}

func NewSession(userID string) *Session {
	return &Session{
		UserID:      userID,
		ActiveFlow:  FlowNone,
		CurrentStep: StepNone,
		Fields:      Fields{},
	}
}

func (s *Session) Idle() bool {
	return s.ActiveFlow == FlowNone
}

// Start discards any state of a previously active flow and enters the first
// step of the given one.
func (s *Session) Start(flow FlowName) {
	s.ActiveFlow = flow
	s.CurrentStep = 0
	s.Fields = Fields{}
}

// Reset returns the session to the idle state.
func (s *Session) Reset() {
	s.ActiveFlow = FlowNone
	s.CurrentStep = StepNone
	s.Fields = Fields{}
}

// Clone returns an independent copy, fields included.
func (s *Session) Clone() *Session {
	fields := make(Fields, len(s.Fields))
	for name, value := range s.Fields {
		fields[name] = value
	}
	return &Session{
		UserID:      s.UserID,
		ActiveFlow:  s.ActiveFlow,
		CurrentStep: s.CurrentStep,
		Fields:      fields,
	}
}
