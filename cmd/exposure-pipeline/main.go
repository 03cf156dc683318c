/*
Copyright 2025 Jordi Gil.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Command exposure-pipeline wires the C1-C8 ingestion pipeline (HTTP
// boundary serving submitBatch/getBatchStatus plus its BatchIngested
// consumer), the C9 outbox dispatcher, the C10 report coordinator, and
// the C11 failure queue processor into a single long-running process,
// and runs their independent listen/poll/subscribe loops until the
// process receives a termination signal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/regtech-core/exposure-pipeline/internal/config"
	"github.com/regtech-core/exposure-pipeline/internal/database"
	"github.com/regtech-core/exposure-pipeline/pkg/coordinator"
	"github.com/regtech-core/exposure-pipeline/pkg/datastorage/repository"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
	"github.com/regtech-core/exposure-pipeline/pkg/eventbus"
	"github.com/regtech-core/exposure-pipeline/pkg/failurequeue"
	"github.com/regtech-core/exposure-pipeline/pkg/ingestion"
	"github.com/regtech-core/exposure-pipeline/pkg/notification"
	"github.com/regtech-core/exposure-pipeline/pkg/objectstore"
	"github.com/regtech-core/exposure-pipeline/pkg/objectstore/local"
	"github.com/regtech-core/exposure-pipeline/pkg/objectstore/s3"
	"github.com/regtech-core/exposure-pipeline/pkg/quality"
	"github.com/regtech-core/exposure-pipeline/pkg/report"
	"github.com/regtech-core/exposure-pipeline/pkg/risk"
	"github.com/regtech-core/exposure-pipeline/pkg/rules"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "exposure-pipeline:", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := os.Getenv("EXPOSURE_PIPELINE_CONFIG")
	if configFile == "" {
		configFile = "config.yaml"
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := buildLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}
	sqlxDB, err := database.Connect(dbConfig, logrus.StandardLogger())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer sqlxDB.Close()
	db := sqlxDB.DB

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	objectStore, err := buildObjectStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("build object store: %w", err)
	}

	reports := repository.NewReportRepository(db, log)
	failures := repository.NewFailureRepository(db, log)
	failureQueue := failurequeue.NewQueue(failures)
	publisher := eventbus.NewRedisPublisher(redisClient, cfg.Storage.Prefix)

	coord := coordinator.New(coordinator.Config{
		ReportFormat:        domain.ReportFormat(cfg.Coordinator.ReportFormat),
		ReportBucket:        cfg.Storage.Bucket,
		StaleEventThreshold: cfg.Coordinator.StaleEventThreshold,
	}, reports, failureQueue, objectStore, report.DefaultRegistry(), log)

	batches := repository.NewBatchRepository(db, log)
	ruleStore := repository.NewRuleRepository(db, log)
	exemptionStore := repository.NewExemptionRepository(db, log)
	violations := repository.NewViolationRepository(db, log)
	engine, err := rules.NewEngine(ruleStore, exemptionStore, violations, log)
	if err != nil {
		return fmt.Errorf("build rule engine: %w", err)
	}

	weights := make(quality.Weights, len(cfg.Quality.Weights))
	for dim, w := range cfg.Quality.Weights {
		weights[domain.Dimension(dim)] = w
	}
	scorer := quality.NewScorer(weights)

	rates := make(map[string]decimal.Decimal, len(cfg.FX.Rates))
	for currency, rate := range cfg.FX.Rates {
		rates[currency] = decimal.NewFromFloat(rate)
	}
	calculator := risk.NewCalculator(risk.NewStaticRateProvider(rates))

	outbox := eventbus.NewOutbox(db)
	pipeline := ingestion.NewPipeline(db, objectStore, batches, engine, scorer, calculator, outbox, log)

	subscriber := eventbus.NewRedisSubscriber(redisClient, cfg.Storage.Prefix, failureQueue, log)
	subscriber.On(domain.EventTypeBatchIngested, ingestedHandler(pipeline, log))
	subscriber.On(domain.EventTypeBatchQualityCompleted, qualityHandler(coord, log))
	subscriber.On(domain.EventTypeBatchCalculationCompleted, calculationHandler(coord, log))

	dispatcher := eventbus.NewDispatcher(db, publisher, log)

	var alerter notification.Alerter
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		alerter = notification.NewSlackAlerter(token, os.Getenv("SLACK_ALERT_CHANNEL"))
	}
	processor := failurequeue.NewProcessor(failures, publisher, alerter, map[string]failurequeue.Handler{
		domain.EventTypeBatchIngested:              failurequeue.Handler(ingestedHandler(pipeline, log)),
		domain.EventTypeBatchQualityCompleted:      failurequeue.Handler(qualityHandler(coord, log)),
		domain.EventTypeBatchCalculationCompleted:  failurequeue.Handler(calculationHandler(coord, log)),
	}, log)

	ingestionServer := &http.Server{
		Addr:    ":" + cfg.Server.IngestionPort,
		Handler: ingestion.NewRouter(pipeline, log),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return dispatcher.Run(ctx) })
	group.Go(func() error { return subscriber.Run(ctx) })
	group.Go(func() error { return processor.Run(ctx, 5*time.Second) })
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return ingestionServer.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		if err := ingestionServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("ingestion server: %w", err)
		}
		return nil
	})

	log.Info("exposure-pipeline started", zap.String("ingestion_addr", ingestionServer.Addr))
	if err := group.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("service loop: %w", err)
	}
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid logging.level %q: %w", level, err)
		}
	}
	return cfg.Build()
}

func buildObjectStore(cfg config.StorageConfig) (objectstore.Gateway, error) {
	switch cfg.Type {
	case "", "local":
		return local.NewGateway(cfg.LocalPath, cfg.Bucket), nil
	case "object-store":
		s3cfg := s3.DefaultConfig(cfg.Bucket)
		return s3.NewGateway(context.Background(), s3cfg)
	default:
		return nil, fmt.Errorf("unsupported storage.type %q", cfg.Type)
	}
}

// ingestedHandler decodes a BatchIngested payload and drives the batch
// through ProcessBatch's PARSING->COMPLETED walk. submitBatch only
// persists UPLOADED and enqueues this event; this handler (not the HTTP
// boundary) is what actually runs C3-C8.
func ingestedHandler(pipeline *ingestion.Pipeline, log *zap.Logger) eventbus.EventHandler {
	return func(ctx context.Context, payload []byte) error {
		var evt domain.BatchIngested
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("decode BatchIngested: %w", err)
		}
		if err := pipeline.ProcessBatch(ctx, evt.BatchID); err != nil {
			return err
		}
		log.Debug("processed batch", zap.String("batch_id", evt.BatchID))
		return nil
	}
}

// qualityHandler decodes a BatchQualityCompleted payload and hands it to
// the coordinator, the same decode-then-dispatch shape used for live
// subscription and for failure-queue replay.
func qualityHandler(coord *coordinator.Coordinator, log *zap.Logger) eventbus.EventHandler {
	return func(ctx context.Context, payload []byte) error {
		var evt domain.BatchQualityCompleted
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("decode BatchQualityCompleted: %w", err)
		}
		outcome, err := coord.HandleQualityCompleted(ctx, evt)
		if err != nil {
			return err
		}
		log.Debug("handled BatchQualityCompleted", zap.String("batch_id", evt.BatchID), zap.String("state", string(outcome.State)))
		return nil
	}
}

func calculationHandler(coord *coordinator.Coordinator, log *zap.Logger) eventbus.EventHandler {
	return func(ctx context.Context, payload []byte) error {
		var evt domain.BatchCalculationCompleted
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("decode BatchCalculationCompleted: %w", err)
		}
		outcome, err := coord.HandleCalculationCompleted(ctx, evt)
		if err != nil {
			return err
		}
		log.Debug("handled BatchCalculationCompleted", zap.String("batch_id", evt.BatchID), zap.String("state", string(outcome.State)))
		return nil
	}
}

