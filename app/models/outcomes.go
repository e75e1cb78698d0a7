package models

// kinds of engine outcomes
const (
	OutcomeIgnored = "ignored"
	OutcomePrompt  = "prompt"
	OutcomeReject  = "reject"
	OutcomeMissing = "missing"
	OutcomeResult  = "result"
)

// Outcome is the engine's decision for one inbound event. Text and Options
// are set for prompts and rejects, Call for results.
type Outcome struct {
	Kind    string
	Flow    FlowName
	Text    string
	Options []string
	Call    *CallOutcome
}

// Reply is the rendered message to send back through the chat transport.
// Options, when present, are offered as one-time quick replies.
type Reply struct {
	Text    string
	Options []string
}
