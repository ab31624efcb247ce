package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"healthmon/internal/advisor"
	"healthmon/internal/bridge"
	"healthmon/internal/config"
	"healthmon/internal/consumer"
	"healthmon/internal/httpserver"
	"healthmon/internal/reminders"
	"healthmon/internal/repository"
	"healthmon/internal/thresholds"
	"healthmon/pkg/database"
	"healthmon/pkg/redisx"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service assembles and runs the full monitor: Postgres, Redis, the
// stream consumer, the MQTT bridge, and the HTTP API.
type Service struct {
	cfg    *config.Config
	logger *zap.Logger

	db          *sql.DB
	redisClient *redis.Client

	monitor    *Monitor
	consumer   *consumer.StreamConsumer
	queue      *bridge.Queue
	mqttBridge *bridge.MQTTBridge
	httpServer *httpserver.Server
	scheduler  *reminders.Scheduler

	cancel context.CancelFunc
	errCh  chan error
}

// New connects the backing stores and wires the pipeline. The MQTT
// bridge is optional: it is skipped when no broker is configured.
func New(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := redisx.NewClient(&cfg.Redis)
	if err := redisx.Ping(context.Background(), redisClient); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	vitalsRepo := repository.NewVitalsRepository(db, logger)
	alertsRepo := repository.NewAlertsRepository(db, logger)
	profileRepo := repository.NewProfileRepository(db, logger)
	goalsRepo := repository.NewGoalsRepository(db, logger)
	remindersRepo := repository.NewRemindersRepository(db, logger)
	contactsRepo := repository.NewContactsRepository(db, logger)

	cache := consumer.NewCacheManager(cfg, redisClient, logger)
	store := thresholds.NewStore()

	advisorClient := advisor.NewClient(
		cfg.Advisor.BaseURL,
		cfg.Advisor.APIKey,
		cfg.Advisor.Model,
		time.Duration(cfg.Advisor.TimeoutSeconds)*time.Second,
		logger,
	)

	publisher := consumer.NewStreamPublisher(redisClient, cfg.Monitor.Stream)
	queue := bridge.NewQueue(cfg.Bridge.QueueSize, publisher, logger)

	monitor := NewMonitor(cfg, store, cache,
		vitalsRepo, alertsRepo, profileRepo, goalsRepo, remindersRepo, contactsRepo,
		advisorClient, queue, logger)

	scheduler := reminders.NewScheduler(remindersRepo, cache, monitor.NotificationSettings,
		time.Duration(cfg.Monitor.ReminderIntervalSeconds)*time.Second, logger)

	svc := &Service{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		monitor:     monitor,
		consumer:    consumer.NewStreamConsumer(cfg, redisClient, monitor, logger),
		queue:       queue,
		httpServer:  httpserver.NewServer(cfg.HTTP.Addr, monitor, logger),
		scheduler:   scheduler,
		errCh:       make(chan error, 4),
	}

	if cfg.MQTT.Broker != "" {
		mqttBridge, err := bridge.NewMQTTBridge(&cfg.MQTT, cfg.Bridge.Topic, queue, logger)
		if err != nil {
			svc.closeStores()
			return nil, fmt.Errorf("failed to connect mqtt bridge: %w", err)
		}
		svc.mqttBridge = mqttBridge
	}

	return svc, nil
}

// Start warms the alert history and launches the pipeline goroutines.
func (s *Service) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if err := s.monitor.WarmHistory(ctx); err != nil {
		s.logger.Warn("failed to warm alert history", zap.Error(err))
	}

	go func() {
		if err := s.consumer.Start(ctx); err != nil {
			s.errCh <- fmt.Errorf("stream consumer stopped: %w", err)
		}
	}()

	go func() {
		if err := s.queue.Run(ctx); err != nil {
			s.errCh <- fmt.Errorf("bridge queue stopped: %w", err)
		}
	}()

	go func() {
		if err := s.scheduler.Run(ctx); err != nil {
			s.errCh <- fmt.Errorf("reminder scheduler stopped: %w", err)
		}
	}()

	go func() {
		if err := s.httpServer.Start(); err != nil {
			s.errCh <- fmt.Errorf("http server stopped: %w", err)
		}
	}()

	if s.mqttBridge != nil {
		if err := s.mqttBridge.Subscribe(); err != nil {
			s.Stop()
			return fmt.Errorf("failed to subscribe mqtt bridge: %w", err)
		}
	}

	s.logger.Info("monitor service started",
		zap.String("stream", s.cfg.Monitor.Stream),
		zap.String("http_addr", s.cfg.HTTP.Addr),
		zap.Bool("mqtt_enabled", s.mqttBridge != nil),
	)
	return nil
}

// Err reports fatal errors from the pipeline goroutines.
func (s *Service) Err() <-chan error {
	return s.errCh
}

// Stop shuts the pipeline down and closes the backing stores.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}

	if s.mqttBridge != nil {
		s.mqttBridge.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Stop(shutdownCtx); err != nil {
		s.logger.Warn("http server shutdown failed", zap.Error(err))
	}

	s.closeStores()
	s.logger.Info("monitor service stopped")
}

func (s *Service) closeStores() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("failed to close database", zap.Error(err))
	}
	if err := s.redisClient.Close(); err != nil {
		s.logger.Warn("failed to close redis", zap.Error(err))
	}
}
