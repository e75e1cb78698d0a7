package engine

import (
	"context"
	"sync"

	"bot/app/flow"
	"bot/app/models"
	"bot/app/session"
	"bot/app/walletapi"
	"bot/pkg/log"
)

// Manager advances per-user conversation state machines. Events of one user
// are processed under a per-user lock; users never block each other.
type Manager struct {
	Sessions session.Service
	Flows    *flow.Registry
	Client   walletapi.Service

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(sessions session.Service, flows *flow.Registry, client walletapi.Service) *Manager {
	return &Manager{
		Sessions: sessions,
		Flows:    flows,
		Client:   client,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *Manager) HandleEvent(ctx context.Context, event *models.InboundEvent) (*models.Outcome, error) {
	lock := m.userLock(event.User.TelegramID)
	lock.Lock()
	defer lock.Unlock()

	log.AddFields(ctx, "userId", event.User.TelegramID, "eventId", event.ID)

	sess, err := m.Sessions.GetOrCreate(ctx, event.User.TelegramID)
	if err != nil {
		return nil, err
	}

	if event.Command != "" {
		return m.startFlow(ctx, sess, event.Command)
	}
	return m.advanceFlow(ctx, sess, event)
}

// startFlow enters the flow behind an entry command. A flow already in
// progress is silently discarded together with its collected fields.
func (m *Manager) startFlow(
	ctx context.Context,
	sess *models.Session,
	command string,
) (*models.Outcome, error) {
	def := m.Flows.ByCommand(command)
	if def == nil {
		return &models.Outcome{Kind: models.OutcomeIgnored}, nil
	}

	if !sess.Idle() {
		log.Infow("abandoning an active flow", "userId", sess.UserID, "flow", sess.ActiveFlow)
	}

	sess.Start(def.Name)
	if err := m.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	first := def.Steps[0]
	return &models.Outcome{
		Kind:    models.OutcomePrompt,
		Flow:    def.Name,
		Text:    first.Prompt,
		Options: first.Options,
	}, nil
}

func (m *Manager) advanceFlow(
	ctx context.Context,
	sess *models.Session,
	event *models.InboundEvent,
) (*models.Outcome, error) {
	if sess.Idle() {
		// plain text without an active flow is a transport concern
		return &models.Outcome{Kind: models.OutcomeIgnored}, nil
	}

	def := m.Flows.ByName(sess.ActiveFlow)
	if def == nil || sess.CurrentStep < 0 || sess.CurrentStep >= len(def.Steps) {
		// a stale session from an older flow set, drop it
		log.Warnw("resetting a stale session", "userId", sess.UserID, "flow", sess.ActiveFlow)
		sess.Reset()
		if err := m.Sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
		return &models.Outcome{Kind: models.OutcomeIgnored}, nil
	}

	step := def.Steps[sess.CurrentStep]
	value, err := step.Validate(event.Text)
	if err != nil {
		// re-prompt in place, the session does not move
		log.AddFields(ctx, "rejected", step.Field)
		return &models.Outcome{
			Kind:    models.OutcomeReject,
			Flow:    def.Name,
			Text:    step.Retry,
			Options: step.Options,
		}, nil
	}

	sess.Fields[step.Field] = value
	next := def.NextAfter(sess.CurrentStep, sess.Fields)
	if next != flow.StepEnd {
		sess.CurrentStep = next
		if err := m.Sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
		prompt := def.Steps[next]
		return &models.Outcome{
			Kind:    models.OutcomePrompt,
			Flow:    def.Name,
			Text:    prompt.Prompt,
			Options: prompt.Options,
		}, nil
	}

	return m.finishFlow(ctx, sess, def, event.User)
}

// finishFlow resets the session and issues the flow's single backend call.
func (m *Manager) finishFlow(
	ctx context.Context,
	sess *models.Session,
	def *flow.Definition,
	user *models.User,
) (*models.Outcome, error) {
	fields := sess.Fields
	sess.Reset()
	if err := m.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	if missing := def.Missing(fields); len(missing) > 0 {
		log.Warnw("flow finished with missing fields", "flow", def.Name, "missing", missing)
		return &models.Outcome{Kind: models.OutcomeMissing, Flow: def.Name}, nil
	}

	call, err := def.Finish(ctx, m.Client, user, fields)
	if err != nil {
		log.Errorw("failed to issue a backend call", "flow", def.Name, "error", err.Error())
		call = models.TransportError()
	}
	return &models.Outcome{Kind: models.OutcomeResult, Flow: def.Name, Call: call}, nil
}

func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[userID]
	if !ok {
		lock = new(sync.Mutex)
		m.locks[userID] = lock
	}
	return lock
}
