package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/weekly-lotto/internal/config"
	"github.com/riskibarqy/weekly-lotto/internal/domain/calendar"
	"github.com/riskibarqy/weekly-lotto/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/weekly-lotto/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/weekly-lotto/internal/interfaces/httpapi"
	"github.com/riskibarqy/weekly-lotto/internal/platform/logging"
	"github.com/riskibarqy/weekly-lotto/internal/platform/resilience"
	"github.com/riskibarqy/weekly-lotto/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

// NewHTTPServer wires the store, the use cases and the router. The returned
// cleanup closes the database and must run after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	cal, err := newCalendar(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	store, cleanup, err := newStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	clock := clockwork.NewRealClock()
	gameSvc := usecase.NewGameService(store, cal, clock, logger)
	boardSvc := usecase.NewBoardService(store, cal, clock, logger).WithMaxRepeatWeeks(cfg.BoardMaxRepeatWeeks)
	subscriptionSvc := usecase.NewSubscriptionService(store, clock, logger)

	handler := httpapi.NewHandler(gameSvc, boardSvc, subscriptionSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func newCalendar(cfg config.Config, logger *logging.Logger) (calendar.Calendar, error) {
	loc, fellBack := calendar.LoadLocation(cfg.GameTimezone)
	if fellBack {
		logger.Warn("game timezone unavailable, falling back to UTC", "timezone", cfg.GameTimezone)
	}

	cal, err := calendar.New(loc, cfg.GameCutoffHour)
	if err != nil {
		return calendar.Calendar{}, fmt.Errorf("build game calendar: %w", err)
	}
	return cal, nil
}

func newStore(cfg config.Config, logger *logging.Logger) (usecase.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(memory.SeedPlayers()), func() error { return nil }, nil
	case config.StoreDriverPostgres:
		db, err := openDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL), "max_open_conns", cfg.DBMaxOpenConns)
		store := postgres.NewStore(db, cfg.DBTxMaxAttempts, logger)
		if cfg.DBCircuitEnabled {
			store = store.WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{
				FailureThreshold: cfg.DBCircuitFailureCount,
				OpenTimeout:      cfg.DBCircuitOpenTimeout,
				HalfOpenProbes:   cfg.DBCircuitHalfOpenMaxReq,
			}, clockwork.NewRealClock()))
		}
		return store, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
