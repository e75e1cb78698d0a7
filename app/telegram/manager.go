package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"bot/app/config"
	"bot/app/models"
	"bot/app/presenter"
	"bot/pkg/log"
	"bot/pkg/uuid"
)

const (
	pollRetryInterval = 5 * time.Second

	// events of one user queue up while an earlier one is processed
	workerQueueSize = 16

	welcomeText = "🚀 Welcome to Solana Wallet Bot!\n" +
		"Use /signup to create a new wallet.\n" +
		"Use /balance to check your wallet balance.\n" +
		"Use /transfer to send SOL to another wallet.\n" +
		"Use /switchnetwork to switch Solana networks.\n" +
		"Available networks: mainnet-beta, testnet, devnet, custom.\n" +
		"You can use custom network to connect to solana using your own RPC url.\n" +
		"Use /help to see this message again."
)

var commands = []*BotCommand{
	{Command: "help", Description: "Get a list of available commands with their use"},
	{Command: "signup", Description: "Register with your telegram account."},
	{Command: "balance", Description: "Check wallet balance"},
	{Command: "transfer", Description: "Transfer SOL to another wallet"},
	{Command: "switchnetwork", Description: "Switch Solana networks"},
}

var defaultKeys = []InlineKeyboardButton{
	{Text: "Help", CallbackData: "help"},
	{Text: "Balance", CallbackData: "balance"},
	{Text: "Transfer", CallbackData: "transfer"},
	{Text: "Switch Network", CallbackData: "switchnetwork"},
}

// Manager runs the long-polling loop and fans updates out to one worker per
// user, so a slow backend call never delays other users and events of a
// single user keep their order.
type Manager struct {
	Config  config.Telegram
	API     API
	Handler presenter.Service

	registerOnce sync.Once

	mu      sync.Mutex
	workers map[int64]chan *Update

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewManager(cfg config.Telegram, api API, handler presenter.Service) *Manager {
	return &Manager{
		Config:  cfg,
		API:     api,
		Handler: handler,
		workers: make(map[int64]chan *Update),
		stop:    make(chan struct{}),
	}
}

func (m *Manager) Start() error {
	log.Info("starting the telegram transport")
	m.wg.Add(1)
	go m.poll()
	return nil
}

func (m *Manager) Stop() {
	close(m.stop)
	m.wg.Wait()
	log.Info("telegram transport stopped")
}

func (m *Manager) poll() {
	defer m.wg.Done()
	defer m.closeWorkers()

	var offset int64
	for {
		select {
		case <-m.stop:
			return
		default:
		}

		updates, err := m.API.GetUpdates(context.Background(), offset, m.Config.PollTimeout)
		if err != nil {
			log.Errorw("failed to fetch updates", "error", err.Error())
			select {
			case <-m.stop:
				return
			case <-time.After(pollRetryInterval):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			m.dispatch(update)
		}
	}
}

// dispatch queues an update to its user's worker, starting one on first use.
func (m *Manager) dispatch(update *Update) {
	user := updateUser(update)
	if user == nil || user.IsBot {
		return
	}

	m.mu.Lock()
	worker, ok := m.workers[user.ID]
	if !ok {
		worker = make(chan *Update, workerQueueSize)
		m.workers[user.ID] = worker
		m.wg.Add(1)
		go m.serve(worker)
	}
	m.mu.Unlock()

	worker <- update
}

func (m *Manager) serve(worker <-chan *Update) {
	defer m.wg.Done()
	for update := range worker {
		m.handle(update)
	}
}

func (m *Manager) closeWorkers() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, worker := range m.workers {
		close(worker)
	}
}

func (m *Manager) handle(update *Update) {
	start := time.Now()
	ctx := log.ToContext(context.Background(), log.Default())
	log.AddFields(ctx, "updateId", update.UpdateID)

	user, chatID := updateUser(update), updateChatID(update)
	command, text := updateInput(update)

	if update.CallbackQuery != nil {
		if err := m.API.AnswerCallbackQuery(ctx, update.CallbackQuery.ID); err != nil {
			log.Warnw("failed to answer a callback query", "error", err.Error())
		}
	}

	if command == "start" || command == "help" {
		m.registerCommands(ctx)
		m.send(ctx, chatID, welcomeText, defaultReplyMarkup())
	} else {
		event := &models.InboundEvent{
			ID:      uuid.NewUUID(),
			User:    publicUser(user),
			Command: command,
			Text:    text,
		}
		reply, err := m.Handler.HandleEvent(ctx, event)
		if err != nil {
			log.Errorw("failed to handle an inbound event", "eventId", event.ID, "error", err.Error())
		} else if reply != nil {
			m.send(ctx, chatID, reply.Text, optionsReplyMarkup(reply.Options))
		}
	}

	logger := log.ExtractLogger(ctx)
	logger.Infow("update processed", "latency", time.Since(start))
}

func (m *Manager) send(ctx context.Context, chatID int64, text string, markup interface{}) {
	if chatID == 0 {
		// a callback query may arrive without its source message
		log.Warnw("no chat to reply to, dropping a message")
		return
	}
	if err := m.API.SendMessage(ctx, chatID, text, markup); err != nil {
		log.Errorw("failed to send a message", "chatId", chatID, "error", err.Error())
	}
}

// registerCommands publishes the command list once, on the first /start or
// /help of the process lifetime.
func (m *Manager) registerCommands(ctx context.Context) {
	m.registerOnce.Do(func() {
		if err := m.API.SetMyCommands(ctx, commands); err != nil {
			log.Errorw("failed to register bot commands", "error", err.Error())
		}
	})
}

func updateUser(update *Update) *User {
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From
	}
	if update.Message != nil {
		return update.Message.From
	}
	return nil
}

func updateChatID(update *Update) int64 {
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	if update.Message != nil && update.Message.Chat != nil {
		return update.Message.Chat.ID
	}
	return 0
}

// updateInput extracts either a command name or the plain message text.
// Inline-keyboard presses carry their command in the callback data.
func updateInput(update *Update) (command, text string) {
	if update.CallbackQuery != nil {
		return strings.ToLower(strings.TrimPrefix(update.CallbackQuery.Data, "/")), ""
	}
	if update.Message == nil {
		return "", ""
	}

	text = update.Message.Text
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command = strings.Fields(text)[0][1:]
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at] // strip the bot mention used in group chats
	}
	return strings.ToLower(command), ""
}

func publicUser(user *User) *models.User {
	return &models.User{
		TelegramID:   strconv.FormatInt(user.ID, 10),
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		LanguageCode: user.LanguageCode,
	}
}

func defaultReplyMarkup() *InlineKeyboardMarkup {
	keyboard := make([][]InlineKeyboardButton, 0, len(defaultKeys))
	for _, key := range defaultKeys {
		keyboard = append(keyboard, []InlineKeyboardButton{key})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func optionsReplyMarkup(options []string) interface{} {
	if len(options) == 0 {
		return nil
	}
	keyboard := make([][]KeyboardButton, 0, len(options))
	for _, option := range options {
		keyboard = append(keyboard, []KeyboardButton{{Text: option}})
	}
	return &ReplyKeyboardMarkup{
		Keyboard:        keyboard,
		OneTimeKeyboard: true,
		ResizeKeyboard:  true,
	}
}
