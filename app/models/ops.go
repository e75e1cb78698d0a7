package models

type Health struct {
	Status string `json:"status"`
}

type Stats struct {
	ActiveSessions int    `json:"active_sessions"`
	Uptime         string `json:"uptime"`
}
