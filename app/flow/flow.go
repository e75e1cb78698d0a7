package flow

import (
	"context"

	"bot/app/models"
	"bot/app/walletapi"
)

// StepEnd is the selector result that terminates a flow.
const StepEnd = -1

// Step is one prompt/collect/validate unit. Validate returns the normalized
// value to store, or an error when the input must be re-prompted in place.
// Next picks the index of the following step from what has been collected so
// far; a nil Next means "the next step in order, or the end".
type Step struct {
	Field    string
	Prompt   string
	Retry    string
	Options  []string
	Validate func(text string) (string, error)
	Next     func(fields models.Fields) int
}

// Definition describes one multi-step conversation as data. The engine stays
// flow-agnostic: everything flow-specific lives here.
type Definition struct {
	Name    models.FlowName
	Command string
	Steps   []Step

	// Missing lists required fields absent at terminal time; a non-empty
	// result aborts the flow without calling the backend.
	Missing func(fields models.Fields) []string

	// Finish maps the collected fields to the single backend call.
	Finish func(
		ctx context.Context,
		client walletapi.Service,
		user *models.User,
		fields models.Fields,
	) (*models.CallOutcome, error)
}

// NextAfter resolves the step that follows the given one.
func (d *Definition) NextAfter(step int, fields models.Fields) int {
	if s := d.Steps[step]; s.Next != nil {
		return s.Next(fields)
	}
	if step+1 < len(d.Steps) {
		return step + 1
	}
	return StepEnd
}

// Registry holds the flow definitions loaded at startup, immutable afterwards.
type Registry struct {
	byName    map[models.FlowName]*Definition
	byCommand map[string]*Definition
}

func NewRegistry(definitions ...*Definition) *Registry {
	r := &Registry{
		byName:    make(map[models.FlowName]*Definition),
		byCommand: make(map[string]*Definition),
	}
	for _, d := range definitions {
		r.byName[d.Name] = d
		r.byCommand[d.Command] = d
	}
	return r
}

func (r *Registry) ByName(name models.FlowName) *Definition {
	return r.byName[name]
}

func (r *Registry) ByCommand(command string) *Definition {
	return r.byCommand[command]
}

// Default returns the registry with all the wallet flows.
func Default() *Registry {
	return NewRegistry(Signup(), Balance(), Transfer(), SwitchNetwork())
}
