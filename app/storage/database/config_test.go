package database

import (
	"testing"
)

func TestConnectionStringUsesConfiguredName(t *testing.T) {
	cfg := Config{
		Host:     "localhost",
		Port:     5432,
		Name:     "sessions_db",
		User:     "bot",
		Password: "pw",
	}

	const expected = "host=localhost port=5432 dbname=sessions_db user=bot password=pw sslmode=disable"
	if have := cfg.DBConnectionString(); have != expected {
		t.Errorf("wrong connection string, expected: %s, have: %s", expected, have)
	}
}

func TestConnectionStringFallsBackToUser(t *testing.T) {
	cfg := Config{
		Host:            "localhost",
		Port:            5432,
		User:            "bot",
		Password:        "pw",
		MigrationsTable: "bot_schema_migrations",
	}

	const expected = "postgresql://bot:pw@localhost:5432/bot?sslmode=disable&x-migrations-table=bot_schema_migrations"
	if have := cfg.DBConnectionStringForMigration(); have != expected {
		t.Errorf("wrong migration connection string, expected: %s, have: %s", expected, have)
	}
}
