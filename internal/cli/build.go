package cli

import (
	"log/slog"

	httpadapter "github.com/tephralabs/lavaflow/internal/adapter/http"
	kafkaadapter "github.com/tephralabs/lavaflow/internal/adapter/kafka"
	"github.com/tephralabs/lavaflow/internal/archive"
	"github.com/tephralabs/lavaflow/internal/config"
	"github.com/tephralabs/lavaflow/internal/firms"
	"github.com/tephralabs/lavaflow/internal/observability"
	"github.com/tephralabs/lavaflow/internal/pipeline"
)

// app bundles everything a command needs, so each RunE stays short.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	pipeline *pipeline.Pipeline
	sink     *kafkaadapter.Writer // nil unless brokers are configured
}

// buildApp assembles the pipeline from validated configuration. The FIRMS
// client is always constructed; commands that never fetch simply do not call
// it, and only fetching commands check the map key beforehand.
func buildApp(cfg *config.Config) *app {
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	source := firms.NewClient(cfg.MapKey, cfg.FetchTimeout, cfg.RequestsPerMinute, logger)
	store := archive.NewStore(cfg.ArchiveDir, logger)
	outputs := archive.NewOutputWriter(cfg.OutputDir)

	var sink *kafkaadapter.Writer
	var eventSink pipeline.EventSink
	if cfg.KafkaEnabled() {
		sink = kafkaadapter.NewWriter(cfg, logger)
		eventSink = sink
		logger.Info("kafka event sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		pipeline: pipeline.New(cfg, source, store, outputs, eventSink, logger, metrics),
		sink:     sink,
	}
}

// close releases external resources. Safe to call when no sink exists.
func (a *app) close() {
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.logger.Error("kafka writer close error", "error", err)
		}
	}
}

// newServer builds the health and metrics endpoint server for watch mode.
func (a *app) newServer() *httpadapter.Server {
	return httpadapter.NewServer(a.cfg.HTTPAddr, a.cfg.Volcano, a.pipeline, a.logger)
}
