package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"launchpad/config"
	"launchpad/core/events"
	"launchpad/crypto"
	"launchpad/host"
	"launchpad/native/airdrop"
	"launchpad/native/ido"
	"launchpad/native/kyc"
	"launchpad/native/stakinggateway"
	"launchpad/native/vestinggateway"
	"launchpad/observability/logging"
	"launchpad/observability/otel"
	"launchpad/storage"
)

// Codes lists every contract kind a node can deploy.
func Codes() map[string]host.Contract {
	return map[string]host.Contract{
		airdrop.Kind:        airdrop.Contract{},
		ido.Kind:            ido.Contract{},
		kyc.Kind:            kyc.Contract{},
		stakinggateway.Kind: stakinggateway.Contract{},
		vestinggateway.Kind: vestinggateway.Contract{},
	}
}

// Option customises a node before it opens any resources.
type Option func(*Node)

// WithLogger replaces the process-wide JSON logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) { n.logger = logger }
}

// WithEmitter forwards committed contract events.
func WithEmitter(emitter events.Emitter) Option {
	return func(n *Node) { n.emitter = emitter }
}

// WithCode registers an extra contract kind, such as a token.
func WithCode(kind string, code host.Contract) Option {
	return func(n *Node) { n.extra[kind] = code }
}

// Node owns the database, the host and the telemetry providers.
type Node struct {
	cfg      *config.Config
	db       storage.Database
	host     *host.Host
	logger   *slog.Logger
	emitter  events.Emitter
	extra    map[string]host.Contract
	shutdown otel.Shutdown
}

// New opens the configured backend, rebinds deployed contracts and applies
// genesis the first time the data dir is used.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := &Node{cfg: cfg, extra: make(map[string]host.Contract)}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = logging.Setup(logging.Options{
			Service: cfg.ServiceName,
			Env:     cfg.Environment,
			Level:   logging.ParseLevel(cfg.LogLevel),
		})
	}
	if err := crypto.SetAddressPrefix(crypto.AddressPrefix(cfg.AddressPrefix)); err != nil {
		return nil, err
	}

	shutdown, err := otel.Init(ctx, otel.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Traces:      cfg.Telemetry.Traces,
		Metrics:     cfg.Telemetry.Metrics,
	})
	if err != nil {
		return nil, err
	}
	n.shutdown = shutdown
	if cfg.Telemetry.Enabled() {
		n.logger.Info("telemetry enabled",
			logging.MaskURL("endpoint", cfg.Telemetry.Endpoint),
			logging.MaskField("headers", os.Getenv(otel.HeadersEnv)))
	}

	db, err := openDatabase(cfg)
	if err != nil {
		_ = n.shutdown(ctx)
		return nil, err
	}
	n.db = db

	if err := n.buildHost(); err != nil {
		_ = n.Close()
		return nil, err
	}
	if err := n.applyGenesis(ctx); err != nil {
		_ = n.Close()
		return nil, fmt.Errorf("genesis: %w", err)
	}
	n.logger.Info("node ready",
		slog.String("backend", cfg.Backend),
		slog.Int("contracts", len(n.host.Instances())))
	return n, nil
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == storage.BackendMemory {
		return storage.Open(backend, "")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}
	path := filepath.Join(cfg.DataDir, "state")
	if backend == storage.BackendBolt {
		path = filepath.Join(cfg.DataDir, "state.db")
	}
	db, err := storage.Open(backend, path)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", backend, err)
	}
	return db, nil
}

func (n *Node) buildHost() error {
	h := host.New(n.db)
	h.SetLogger(n.logger.With(slog.String("component", "host")))
	h.SetMaxDepth(n.cfg.MaxQueryDepth)
	h.SetEmitter(n.emitter)
	for kind, code := range Codes() {
		if err := h.RegisterCode(kind, code); err != nil {
			return err
		}
	}
	for kind, code := range n.extra {
		if err := h.RegisterCode(kind, code); err != nil {
			return err
		}
	}
	if err := h.Load(); err != nil {
		return err
	}
	n.host = h
	return nil
}

// Host returns the contract host.
func (n *Node) Host() *host.Host { return n.host }

// Logger returns the node logger.
func (n *Node) Logger() *slog.Logger { return n.logger }

// Close flushes telemetry and closes the database.
func (n *Node) Close() error {
	var errs []error
	if n.shutdown != nil {
		if err := n.shutdown(context.Background()); err != nil {
			errs = append(errs, err)
		}
		n.shutdown = nil
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			errs = append(errs, err)
		}
		n.db = nil
	}
	return errors.Join(errs...)
}
