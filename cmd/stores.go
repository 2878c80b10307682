package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/event-portal/internal/config"
	"github.com/Shivanand-hulikatti/event-portal/internal/database"
	"github.com/Shivanand-hulikatti/event-portal/internal/repository/postgres"
	"github.com/Shivanand-hulikatti/event-portal/internal/repository/sqlite"
	"github.com/Shivanand-hulikatti/event-portal/internal/service"
)

type registrationStore interface {
	service.RegistrationStore
	service.TokenSequencer
}

// stores holds one backend's repositories behind the service interfaces.
type stores struct {
	events    service.EventStore
	students  service.StudentStore
	regs      service.RegistrationStore
	sequencer service.TokenSequencer
	status    service.StatusStore
	close     func()
}

func newStores(events service.EventStore, students service.StudentStore, regs registrationStore, status service.StatusStore, closeFn func()) *stores {
	return &stores{
		events:    events,
		students:  students,
		regs:      regs,
		sequencer: regs,
		status:    status,
		close:     closeFn,
	}
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return newStores(
			postgres.NewEventRepository(pool),
			postgres.NewStudentRepository(pool),
			postgres.NewRegistrationRepository(pool),
			postgres.NewStatusRepository(pool),
			pool.Close,
		), nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return newStores(
			sqlite.NewEventRepository(db),
			sqlite.NewStudentRepository(db),
			sqlite.NewRegistrationRepository(db),
			sqlite.NewStatusRepository(db),
			func() { _ = db.Close() },
		), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}
