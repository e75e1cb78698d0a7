package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // also imports "github.com/lib/pq"
	bindata "github.com/golang-migrate/migrate/v4/source/go_bindata"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"bot/app/models"
	"bot/app/storage/migrations"
	"bot/pkg/uuid"
)

type Postgres struct {
	DB *sqlx.DB
}

func Connect(cfg Config) (*Postgres, error) {
	connectionString := cfg.DBConnectionString()
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to the database")
	}

	// auto-migrate the db
	if err = migrateDB(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to migrate the database")
	}

	pg := &Postgres{DB: db}
	return pg, nil
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}

func (p *Postgres) GetSession(ctx context.Context, userID string) (*models.Session, error) {
	result := new(Session)
	err := p.DB.GetContext(
		ctx,
		result,
		"SELECT * FROM sessions WHERE user_id = $1 LIMIT 1;",
		userID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to select a session")
	}
	return result.ToPublic()
}

func (p *Postgres) SaveSession(ctx context.Context, session *models.Session) error {
	dbSession, err := NewSessionFromPublic(session)
	if err != nil {
		return err
	}
	dbSession.Base = Base{
		ID:        uuid.NewUUID(),
		CreatedAt: time.Now(),
	}

	_, err = p.DB.NamedExecContext(
		ctx,
		`INSERT INTO sessions (id, user_id, active_flow, current_step, fields, created_at)
			VALUES (:id, :user_id, :active_flow, :current_step, :fields, :created_at)
			ON CONFLICT (user_id) DO UPDATE
			SET active_flow = EXCLUDED.active_flow, current_step = EXCLUDED.current_step,
				fields = EXCLUDED.fields, updated_at = NOW();`,
		dbSession,
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert a session")
	}
	return nil
}

func (p *Postgres) CountActiveSessions(ctx context.Context) (int, error) {
	var result int
	if err := p.DB.GetContext(
		ctx,
		&result,
		"SELECT COUNT(*) FROM sessions WHERE active_flow <> '';",
	); err != nil {
		return 0, errors.Wrap(err, "failed to count active sessions")
	}
	return result, nil
}

func migrateDB(cfg Config) error {
	res := bindata.Resource(migrations.AssetNames(), func(name string) ([]byte, error) {
		return migrations.Asset(name)
	})
	driver, err := bindata.WithInstance(res)
	if err != nil {
		return errors.WithMessage(err, "failed to initialize a driver")
	}

	connectionString := cfg.DBConnectionStringForMigration()
	migration, err := migrate.NewWithSourceInstance("go-bindata", driver, connectionString)
	if err != nil {
		return errors.WithMessage(err, "failed to initialize a migration instance")
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.WithMessage(err, "failed to apply migrations")
	}
	return nil
}
