package main

import (
	"context"
	"os"

	"github.com/dukex/swimlane/pkg/cmd"
	"github.com/dukex/swimlane/pkg/config"
	"github.com/dukex/swimlane/pkg/log"
	"github.com/dukex/swimlane/pkg/otelhelper"
	"github.com/dukex/swimlane/pkg/retention"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort         = 9091
	defaultSnapshotKeep = 20
)

func main() {
	command := &cli.Command{
		Name:                  "swimlane-api",
		Usage:                 "Generate, validate and store swimlane process graphs",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence (file://, postgres://, redis://)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (none, gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "quality-config",
				Usage:   "Path to a YAML file with quality thresholds",
				Sources: cli.EnvVars("QUALITY_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "retention-cron",
				Usage:   "Cron schedule of the snapshot retention job",
				Value:   retention.DefaultSchedule,
				Sources: cli.EnvVars("RETENTION_CRON"),
			},
			&cli.IntFlag{
				Name:    "snapshot-keep",
				Usage:   "Snapshots kept per process by the retention job, 0 disables the job",
				Value:   defaultSnapshotKeep,
				Sources: cli.EnvVars("SNAPSHOT_KEEP"),
			},
			&cli.BoolFlag{
				Name:    "otel",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logs := log.NewRingBuffer(log.DefaultBufferSize)
			log.SetupWithBuffer(command.String("log-level"), logs)

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Swimlane API")

			thresholds, err := config.LoadQualityThresholds(command.String("quality-config"))
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			tracer := otelhelper.NoopTracer()

			if command.Bool("otel") {
				otelTracer, shutdown, err := otelhelper.NewTracer(ctx, "swimlane-api")
				if err != nil {
					return err
				}

				tracer = otelTracer

				defer func() {
					if err := shutdown(ctx); err != nil {
						logger.ErrorContext(ctx, "Failed to shutdown tracer", "error", err)
					}
				}()
			}

			if keep := command.Int("snapshot-keep"); keep > 0 {
				job, err := retention.NewJob(persistence, eventBus, logger, command.String("retention-cron"), keep)
				if err != nil {
					return err
				}

				if err := job.Start(ctx); err != nil {
					return err
				}

				defer job.Stop(ctx)
			}

			api := NewAPI(logger, persistence, eventBus,
				WithThresholds(thresholds),
				WithLogBuffer(logs),
				WithTracer(tracer),
			)

			if err := api.WatchEvents(ctx); err != nil {
				return err
			}

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
