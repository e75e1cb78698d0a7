package database

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"bot/app/models"
)

type Base struct {
	ID        string     `db:"id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

type Session struct {
	Base
	UserID      string `db:"user_id"`
	ActiveFlow  string `db:"active_flow"`
	CurrentStep int    `db:"current_step"`
	Fields      []byte `db:"fields"`
}

func (s *Session) ToPublic() (*models.Session, error) {
	fields := models.Fields{}
	if len(s.Fields) > 0 {
		if err := json.Unmarshal(s.Fields, &fields); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal session fields")
		}
	}

	step := s.CurrentStep
	if s.ActiveFlow == "" {
		step = models.StepNone
	}

	return &models.Session{
		UserID:      s.UserID,
		ActiveFlow:  models.FlowName(s.ActiveFlow),
		CurrentStep: step,
		Fields:      fields,
	}, nil
}

func NewSessionFromPublic(session *models.Session) (*Session, error) {
	fields, err := json.Marshal(session.Fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal session fields")
	}

	step := session.CurrentStep
	if session.ActiveFlow == models.FlowNone {
		step = 0 // keep the column non-negative while idle
	}

	return &Session{
		UserID:      session.UserID,
		ActiveFlow:  string(session.ActiveFlow),
		CurrentStep: step,
		Fields:      fields,
	}, nil
}
