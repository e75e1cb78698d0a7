package engine

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"bot/app/config"
	"bot/app/flow"
	"bot/app/models"
	"bot/app/session"
)

type fakeClient struct {
	mu       sync.Mutex
	outcome  *models.CallOutcome
	signups  []*models.SignupRequest
	balances []*models.BalanceRequest
	xfers    []*models.TransferRequest
	switches []*models.SwitchNetworkRequest
}

func (f *fakeClient) Signup(ctx context.Context, in *models.SignupRequest) (*models.CallOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signups = append(f.signups, in)
	return f.result(), nil
}

func (f *fakeClient) Balance(ctx context.Context, in *models.BalanceRequest) (*models.CallOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances = append(f.balances, in)
	return f.result(), nil
}

func (f *fakeClient) Transfer(ctx context.Context, in *models.TransferRequest) (*models.CallOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.xfers = append(f.xfers, in)
	return f.result(), nil
}

func (f *fakeClient) SwitchNetwork(ctx context.Context, in *models.SwitchNetworkRequest) (*models.CallOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switches = append(f.switches, in)
	return f.result(), nil
}

func (f *fakeClient) result() *models.CallOutcome {
	if f.outcome != nil {
		return f.outcome
	}
	return models.Success()
}

func newTestManager(client *fakeClient) (*Manager, session.Service) {
	sessions := session.NewManager(config.Session{
		IdleTTL:         time.Minute,
		CleanupInterval: time.Minute,
	})
	return NewManager(sessions, flow.Default(), client), sessions
}

func testUser(id string) *models.User {
	return &models.User{
		TelegramID:   id,
		Username:     "bob",
		FirstName:    "Bob",
		LastName:     "Tester",
		LanguageCode: "en",
	}
}

func commandEvent(user *models.User, command string) *models.InboundEvent {
	return &models.InboundEvent{ID: "e-" + command, User: user, Command: command}
}

func textEvent(user *models.User, text string) *models.InboundEvent {
	return &models.InboundEvent{ID: "e-text", User: user, Text: text}
}

func handle(t *testing.T, m *Manager, event *models.InboundEvent) *models.Outcome {
	t.Helper()
	outcome, err := m.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("unexpected engine error: %s", err)
	}
	return outcome
}

func assertInvariant(t *testing.T, sessions session.Service, userID string) {
	t.Helper()
	sess, err := sessions.GetOrCreate(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to load a session: %s", err)
	}
	hasFlow := sess.ActiveFlow != models.FlowNone
	hasStep := sess.CurrentStep != models.StepNone
	if hasFlow != hasStep {
		t.Errorf("invariant broken: flow=%q step=%d", sess.ActiveFlow, sess.CurrentStep)
	}
}

func TestSignupFlowCompletes(t *testing.T) {
	client := &fakeClient{}
	m, sessions := newTestManager(client)
	user := testUser("42")

	outcome := handle(t, m, commandEvent(user, "signup"))
	if outcome.Kind != models.OutcomePrompt {
		t.Fatalf("wrong outcome kind, expected: %s, have: %s", models.OutcomePrompt, outcome.Kind)
	}
	assertInvariant(t, sessions, user.TelegramID)

	outcome = handle(t, m, textEvent(user, "hunter2"))
	if outcome.Kind != models.OutcomePrompt {
		t.Fatalf("wrong outcome kind after password, have: %s", outcome.Kind)
	}
	assertInvariant(t, sessions, user.TelegramID)

	outcome = handle(t, m, textEvent(user, "savings"))
	if outcome.Kind != models.OutcomeResult {
		t.Fatalf("wrong outcome kind after wallet name, have: %s", outcome.Kind)
	}
	assertInvariant(t, sessions, user.TelegramID)

	if len(client.signups) != 1 {
		t.Fatalf("wrong number of signup calls, expected: 1, have: %d", len(client.signups))
	}
	in := client.signups[0]
	if in.TelegramID != "42" || in.Username != "bob" || in.FirstName != "Bob" ||
		in.LastName != "Tester" || in.LanguageCode != "en" ||
		in.Name != "savings" || in.Password != "hunter2" {
		t.Errorf("signup request is not fully populated: %+v", in)
	}

	sess, _ := sessions.GetOrCreate(context.Background(), user.TelegramID)
	if !sess.Idle() || len(sess.Fields) != 0 {
		t.Errorf("session not reset after the flow, flow=%q fields=%v", sess.ActiveFlow, sess.Fields)
	}
}

func TestBalanceFlowDefaultsAndIndex(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestManager(client)
	user := testUser("7")

	handle(t, m, commandEvent(user, "balance"))
	handle(t, m, textEvent(user, "2"))
	outcome := handle(t, m, textEvent(user, "secret"))
	if outcome.Kind != models.OutcomeResult {
		t.Fatalf("wrong outcome kind, have: %s", outcome.Kind)
	}

	if len(client.balances) != 1 {
		t.Fatalf("wrong number of balance calls, expected: 1, have: %d", len(client.balances))
	}
	in := client.balances[0]
	if in.WalletIndex != 2 || in.Password != "secret" || in.TelegramID != "7" {
		t.Errorf("balance request is not fully populated: %+v", in)
	}
}

func TestInvalidAmountStaysOnSameStep(t *testing.T) {
	client := &fakeClient{}
	m, sessions := newTestManager(client)
	user := testUser("9")

	handle(t, m, commandEvent(user, "transfer"))
	handle(t, m, textEvent(user, "receiver-address"))

	outcome := handle(t, m, textEvent(user, "abc"))
	if outcome.Kind != models.OutcomeReject {
		t.Fatalf("wrong outcome kind for a bad amount, have: %s", outcome.Kind)
	}

	sess, _ := sessions.GetOrCreate(context.Background(), user.TelegramID)
	if _, ok := sess.Fields[models.FieldAmount]; ok {
		t.Error("rejected amount unexpectedly stored")
	}
	step := sess.CurrentStep

	// a valid amount advances from the very same step
	outcome = handle(t, m, textEvent(user, "1.5"))
	if outcome.Kind != models.OutcomePrompt {
		t.Fatalf("wrong outcome kind for a valid amount, have: %s", outcome.Kind)
	}
	sess, _ = sessions.GetOrCreate(context.Background(), user.TelegramID)
	if sess.CurrentStep != step+1 {
		t.Errorf("wrong step after a valid amount, expected: %d, have: %d", step+1, sess.CurrentStep)
	}

	handle(t, m, textEvent(user, "secret"))
	if len(client.xfers) != 1 {
		t.Fatalf("wrong number of transfer calls, expected: 1, have: %d", len(client.xfers))
	}
	in := client.xfers[0]
	if in.ReceiverAddress != "receiver-address" || in.Amount != 1.5 ||
		in.Password != "secret" || in.WalletIndex != 0 {
		t.Errorf("transfer request is not fully populated: %+v", in)
	}
}

func TestSwitchNetworkCustomPath(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestManager(client)
	user := testUser("11")

	outcome := handle(t, m, commandEvent(user, "switchnetwork"))
	if len(outcome.Options) == 0 {
		t.Error("network selection prompt carries no options")
	}

	handle(t, m, textEvent(user, "custom"))
	handle(t, m, textEvent(user, "https://rpc.example.com"))
	outcome = handle(t, m, textEvent(user, "secret"))
	if outcome.Kind != models.OutcomeResult {
		t.Fatalf("wrong outcome kind, have: %s", outcome.Kind)
	}

	if len(client.switches) != 1 {
		t.Fatalf("wrong number of switch calls, expected: 1, have: %d", len(client.switches))
	}
	in := client.switches[0]
	if in.Network != "custom" || in.RpcURL != "https://rpc.example.com" || in.Password != "secret" {
		t.Errorf("switch request is not fully populated: %+v", in)
	}
}

func TestSwitchNetworkNamedSkipsRpcStep(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestManager(client)
	user := testUser("12")

	handle(t, m, commandEvent(user, "switchnetwork"))
	handle(t, m, textEvent(user, "devnet"))
	outcome := handle(t, m, textEvent(user, "secret"))
	if outcome.Kind != models.OutcomeResult {
		t.Fatalf("wrong outcome kind, have: %s", outcome.Kind)
	}

	in := client.switches[0]
	if in.Network != "devnet" || in.RpcURL != "" {
		t.Errorf("devnet switch unexpectedly carries an rpc url: %+v", in)
	}
}

func TestInvalidNetworkRepromptsSameStep(t *testing.T) {
	client := &fakeClient{}
	m, sessions := newTestManager(client)
	user := testUser("13")

	handle(t, m, commandEvent(user, "switchnetwork"))
	outcome := handle(t, m, textEvent(user, "mainnet"))
	if outcome.Kind != models.OutcomeReject {
		t.Fatalf("wrong outcome kind for a bad network, have: %s", outcome.Kind)
	}
	if len(outcome.Options) == 0 {
		t.Error("network re-prompt lost its options")
	}

	sess, _ := sessions.GetOrCreate(context.Background(), user.TelegramID)
	if sess.CurrentStep != 0 {
		t.Errorf("session moved after a rejected network, step: %d", sess.CurrentStep)
	}
}

func TestFlowEntryDiscardsActiveFlow(t *testing.T) {
	client := &fakeClient{}
	m, sessions := newTestManager(client)
	user := testUser("14")

	handle(t, m, commandEvent(user, "transfer"))
	handle(t, m, textEvent(user, "receiver-address"))

	outcome := handle(t, m, commandEvent(user, "balance"))
	if outcome.Kind != models.OutcomePrompt {
		t.Fatalf("wrong outcome kind for a flow re-entry, have: %s", outcome.Kind)
	}

	sess, _ := sessions.GetOrCreate(context.Background(), user.TelegramID)
	if sess.ActiveFlow != models.FlowBalance || sess.CurrentStep != 0 {
		t.Errorf("wrong session after re-entry: flow=%q step=%d", sess.ActiveFlow, sess.CurrentStep)
	}
	if len(sess.Fields) != 0 {
		t.Errorf("stale fields survived a flow re-entry: %v", sess.Fields)
	}
}

func TestIdleTextIsIgnored(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestManager(client)

	outcome := handle(t, m, textEvent(testUser("15"), "hello there"))
	if outcome.Kind != models.OutcomeIgnored {
		t.Errorf("wrong outcome kind for idle text, have: %s", outcome.Kind)
	}
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestManager(client)

	outcome := handle(t, m, commandEvent(testUser("16"), "dance"))
	if outcome.Kind != models.OutcomeIgnored {
		t.Errorf("wrong outcome kind for an unknown command, have: %s", outcome.Kind)
	}
}

func TestMissingFieldsAbortWithoutBackendCall(t *testing.T) {
	client := &fakeClient{}
	m, sessions := newTestManager(client)
	user := testUser("17")

	// force a session that reached the last signup step without a password
	sess, _ := sessions.GetOrCreate(context.Background(), user.TelegramID)
	sess.Start(models.FlowSignup)
	sess.CurrentStep = 1
	if err := sessions.Save(context.Background(), sess); err != nil {
		t.Fatalf("failed to save a session: %s", err)
	}

	outcome := handle(t, m, textEvent(user, "savings"))
	if outcome.Kind != models.OutcomeMissing {
		t.Fatalf("wrong outcome kind, expected: %s, have: %s", models.OutcomeMissing, outcome.Kind)
	}
	if len(client.signups) != 0 {
		t.Errorf("backend unexpectedly called with missing fields")
	}
	assertInvariant(t, sessions, user.TelegramID)
}

func TestActiveCountDuringFlows(t *testing.T) {
	client := &fakeClient{}
	m, sessions := newTestManager(client)

	const flows = 50
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx := context.Background()
		for i := 0; i < flows; i++ {
			user := testUser("user-" + strconv.Itoa(i))
			_, _ = m.HandleEvent(ctx, commandEvent(user, "transfer"))
			_, _ = m.HandleEvent(ctx, textEvent(user, "receiver-address"))
			_, _ = m.HandleEvent(ctx, textEvent(user, "1"))
			_, _ = m.HandleEvent(ctx, textEvent(user, "pw"))
		}
	}()

	// read the stats while the flows advance
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		if _, err := sessions.Active(context.Background()); err != nil {
			t.Fatalf("failed to count active sessions: %s", err)
		}
	}

	if len(client.xfers) != flows {
		t.Errorf("wrong number of transfer calls, expected: %d, have: %d", flows, len(client.xfers))
	}
	if active, _ := sessions.Active(context.Background()); active != 0 {
		t.Errorf("sessions left active after all flows finished: %d", active)
	}
}

func TestConcurrentUsersKeepSeparateState(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestManager(client)

	var wg sync.WaitGroup
	for _, id := range []string{"100", "200", "300"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			ctx := context.Background()
			user := testUser(id)
			_, _ = m.HandleEvent(ctx, commandEvent(user, "transfer"))
			_, _ = m.HandleEvent(ctx, textEvent(user, "addr-"+id))
			_, _ = m.HandleEvent(ctx, textEvent(user, "1"))
			_, _ = m.HandleEvent(ctx, textEvent(user, "pw-"+id))
		}(id)
	}
	wg.Wait()

	if len(client.xfers) != 3 {
		t.Fatalf("wrong number of transfer calls, expected: 3, have: %d", len(client.xfers))
	}
	for _, in := range client.xfers {
		if in.ReceiverAddress != "addr-"+in.TelegramID || in.Password != "pw-"+in.TelegramID {
			t.Errorf("cross-user state leak in a transfer request: %+v", in)
		}
	}
}
