package models

// User is the identity of the chat peer, as the transport reports it.
type User struct {
	TelegramID   string `json:"telegramId"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// InboundEvent is one piece of user input delivered by the chat transport.
// Command is set (without the leading slash) when the input is a bot command,
// Text carries the raw message text otherwise.
type InboundEvent struct {
	ID      string // correlation id
	User    *User
	Command string
	Text    string
}
