package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"zmq_listener/internal/adapters/codec"
	"zmq_listener/internal/adapters/kafkarelay"
	"zmq_listener/internal/adapters/logger"
	"zmq_listener/internal/adapters/mailalert"
	"zmq_listener/internal/adapters/printer"
	"zmq_listener/internal/adapters/valkeyrelay"
	"zmq_listener/internal/adapters/zmqsub"
	"zmq_listener/internal/config"
	"zmq_listener/internal/domain/log"
	"zmq_listener/internal/domain/notify"
	"zmq_listener/internal/services/listener"
	"zmq_listener/internal/services/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	Dispatcher *listener.Dispatcher
	Channel    notify.Channel
	Handler    notify.Handler
	Sinks      []string
	Logger     log.Logger
	Metrics    *metrics.Service

	closers []io.Closer
}

// Build wires the subscription channel, the dispatcher and every enabled sink.
// Printed notifications go to out.
func Build(cfg *config.Config, out io.Writer) (*App, error) {
	myLogger, err := newLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	a := &App{Logger: myLogger}

	sinks, err := a.buildSinks(cfg, out)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	for _, s := range sinks {
		a.Sinks = append(a.Sinks, s.Name)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)
	if cfg.Metrics.Enabled {
		a.Metrics = metrics.NewService(cfg.Metrics.Address, reg, myLogger)
	}

	topics, err := cfg.ZMQ.TopicSet()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	ch, err := zmqsub.Open(cfg.ZMQ.Endpoint(), topics...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Channel = ch
	a.closers = append(a.closers, ch)

	a.Dispatcher = listener.New(myLogger, collector)
	a.Handler = listener.Chain(listener.Logging(myLogger))(listener.Fanout(sinks...))

	myLogger.Info("listener configured",
		log.Field{Key: "endpoint", Value: ch.Endpoint()},
		log.Field{Key: "topics", Value: cfg.ZMQ.Topics},
		log.Field{Key: "sinks", Value: a.Sinks},
	)
	return a, nil
}

func newLogger(cfg config.LoggerConfig) (log.Logger, error) {
	switch cfg.Driver {
	case "loglib":
		return logger.New(cfg.GRPCAddress, cfg.FallbackPath, cfg.ServiceName)
	case "zap", "":
		return logger.NewZap(cfg.Level)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}

func (a *App) buildSinks(cfg *config.Config, out io.Writer) ([]listener.Sink, error) {
	var sinks []listener.Sink

	if !cfg.Printer.Disabled {
		sinks = append(sinks, listener.Sink{Name: "printer", Handle: printer.New(out).Handle})
	}

	enc, err := codec.New(cfg.Relay.Encoding)
	if err != nil {
		return nil, err
	}

	if cfg.Kafka.Enabled {
		r := kafkarelay.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, enc)
		a.closers = append(a.closers, r)
		sinks = append(sinks, listener.Sink{Name: "kafka", Handle: r.Handle})
	}

	if cfg.Valkey.Enabled {
		r, err := valkeyrelay.New(cfg.Valkey.Host, cfg.Valkey.Port, cfg.Valkey.Stream, enc)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r)
		sinks = append(sinks, listener.Sink{Name: "valkey", Handle: r.Handle})
	}

	if cfg.Mail.Enabled {
		a.Logger.Info("block alerts enabled", log.Field{Key: "smtp", Value: cfg.Mail.Redacted()})
		m := mailalert.New(mailalert.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			To:       cfg.Mail.To,
		})
		sinks = append(sinks, listener.Sink{Name: "mail", Handle: m.Handle})
	}

	if len(sinks) == 0 {
		return nil, errors.New("no sinks enabled")
	}
	return sinks, nil
}

// Run serves metrics, if enabled, and dispatches notifications until ctx is
// cancelled or the transport fails.
func (a *App) Run(ctx context.Context) error {
	if a.Metrics != nil {
		go a.Metrics.Start()
		defer a.Metrics.ShutDown()
	}
	return a.Dispatcher.Run(ctx, a.Channel, a.Handler)
}

// Close releases the channel and the sinks in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if z, ok := a.Logger.(*logger.Zap); ok {
		// stderr can't always be synced
		_ = z.Sync()
	}
	return errors.Join(errs...)
}
