package goRelay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	internalaudit "github.com/MrEthical07/goRelay/internal/audit"
	"github.com/MrEthical07/goRelay/internal/flows"
	"github.com/MrEthical07/goRelay/probe"
	"github.com/MrEthical07/goRelay/session"
	"github.com/google/uuid"
)

// Builder assembles an [Engine]. A Builder is single-use.
type Builder struct {
	config Config
	store  session.Store

	httpClient *http.Client
	prober     *probe.Prober

	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the backend holding the session slot. Required.
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithHTTPClient sets the client used by the auth probe. The client should carry
// a cookie jar; without one no ambient credentials are sent.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithProber supplies a fully built prober, overriding Probe config and
// WithHTTPClient.
func (b *Builder) WithProber(p *probe.Prober) *Builder {
	b.prober = p
	return b
}

// WithAuditSink sets the audit sink. Audit.Enabled must also be true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to discarding all records.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles storage and probe latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("session store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prober := b.prober
	if prober == nil {
		opts := []probe.Option{probe.WithLoginMarkers(cfg.Probe.LoginMarkers...)}
		if b.httpClient != nil {
			opts = append(opts, probe.WithClient(b.httpClient))
		}
		p, err := probe.New(cfg.Probe.URL, opts...)
		if err != nil {
			return nil, err
		}
		prober = p
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		config: cfg,
		store:  b.store,
		prober: prober,
		flows: flows.New(flows.Deps{
			Session: flows.SessionDeps{
				Store:      b.store,
				Key:        cfg.Session.StorageKey,
				MaxSize:    cfg.Session.MaxSessionSize,
				IsNotFound: func(err error) bool { return errors.Is(err, session.ErrNotFound) },
			},
			Auth: flows.AuthDeps{Prober: proberAdapter{p: prober}},
		}),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		logger:  logger,
		newID:   uuid.NewString,
	}

	b.built = true
	return e, nil
}

type proberAdapter struct {
	p *probe.Prober
}

func (a proberAdapter) Check(ctx context.Context) flows.AuthProbeResult {
	res := a.p.Check(ctx)
	return flows.AuthProbeResult{
		LoggedIn:   res.LoggedIn,
		Status:     res.Status,
		FinalURL:   res.FinalURL,
		Err:        res.Err,
		ErrMessage: res.ErrorMessage(),
	}
}
