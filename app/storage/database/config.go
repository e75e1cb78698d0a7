package database

import (
	"fmt"
)

type Config struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	MigrationsTable string `mapstructure:"migrationsTable"`
}

// dbName falls back to the user name when no database name is configured.
func (c *Config) dbName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.User
}

func (c *Config) DBConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		c.Host, c.Port, c.dbName(), c.User, c.Password,
	)
}

func (c *Config) DBConnectionStringForMigration() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=disable&x-migrations-table=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.dbName(),
		c.MigrationsTable,
	)
}
