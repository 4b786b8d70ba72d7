package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/servicechain/executor/engine/execution/computation"
	"github.com/servicechain/executor/fvm"
	"github.com/servicechain/executor/ledger/complete"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/module"
	"github.com/servicechain/executor/module/metrics"
	"github.com/servicechain/executor/module/trace"
	"github.com/servicechain/executor/services/servicemapping"
	"github.com/servicechain/executor/storage"
	bstorage "github.com/servicechain/executor/storage/badger"
	"github.com/servicechain/executor/utils/io"
)

// GenesisFileName is the name of the copy of the genesis kept in the data
// directory. It is replayed by every command.
const GenesisFileName = "genesis.toml"

// Node is an executor over the block storage of a data directory.
type Node struct {
	Log      zerolog.Logger
	DB       *badger.DB
	Storage  *storage.All
	Manager  *computation.Manager
	Registry *prometheus.Registry

	lock     *io.FileLock
	shutdown func(context.Context) error
}

func InitStorage(dataDir string) (*badger.DB, error) {
	opts := badger.
		DefaultOptions(filepath.Join(dataDir, "blocks")).
		WithKeepL0InMemory(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open block storage: %w", err)
	}
	return db, nil
}

func initTracer(log zerolog.Logger, sensitivity float64) (module.Tracer, func(context.Context) error, error) {
	if sensitivity == 0 {
		return trace.NewNoopTracer(), func(context.Context) error { return nil }, nil
	}

	provider, err := trace.NewLoggingTracerProvider(log, "executor", sensitivity)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create tracer provider: %w", err)
	}
	return trace.NewTracer(log, "executor", provider), provider.Shutdown, nil
}

// InitNode opens the storage of the data directory and bootstraps an
// executor on the given genesis.
func InitNode(ctx context.Context, log zerolog.Logger, config *Config, genesis *types.Genesis) (*Node, error) {
	registry := prometheus.NewRegistry()

	tracer, shutdown, err := initTracer(log, config.TraceSensitivity)
	if err != nil {
		return nil, err
	}

	l, err := complete.NewLedger(
		config.LedgerCapacity,
		metrics.NewLedgerCollector(registry),
		log)
	if err != nil {
		return nil, fmt.Errorf("could not create ledger: %w", err)
	}

	executor := fvm.NewServiceExecutor(
		l,
		servicemapping.NewDefault(),
		fvm.WithLogger(log),
		fvm.WithMetrics(metrics.NewExecutionCollector(registry)),
		fvm.WithTracer(tracer),
		fvm.WithMaxValueSizeAllowed(config.MaxValueSize))

	lock := io.NewFileLock(config.DataDir)
	err = lock.Lock()
	if err != nil {
		return nil, err
	}

	db, err := InitStorage(config.DataDir)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	store := bstorage.InitAll(metrics.NewCacheCollector(registry), db)
	manager := computation.New(log, executor, store, config.CyclesLimit)

	_, err = manager.Bootstrap(ctx, genesis)
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("could not bootstrap executor: %w", err)
	}

	return &Node{
		Log:      log,
		DB:       db,
		Storage:  store,
		Manager:  manager,
		Registry: registry,
		lock:     lock,
		shutdown: shutdown,
	}, nil
}

// Close flushes the traces, closes the storage and releases the data
// directory.
func (n *Node) Close() error {
	err := n.shutdown(context.Background())
	if err != nil {
		n.Log.Warn().Err(err).Msg("could not shut down tracer")
	}
	err = n.DB.Close()
	if err != nil {
		return fmt.Errorf("could not close block storage: %w", err)
	}
	return n.lock.Unlock()
}

// ReadGenesis parses a TOML genesis file.
func ReadGenesis(path string) (*types.Genesis, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read genesis file: %w", err)
	}
	genesis, err := types.ParseGenesisTOML(data)
	if err != nil {
		return nil, nil, err
	}
	return genesis, data, nil
}

// StoredGenesis reads the genesis kept in the data directory.
func StoredGenesis(dataDir string) (*types.Genesis, error) {
	genesis, _, err := ReadGenesis(filepath.Join(dataDir, GenesisFileName))
	if err != nil {
		return nil, fmt.Errorf("data directory is not initialized, run the genesis command first: %w", err)
	}
	return genesis, nil
}

// StoreGenesis keeps a copy of the genesis file in the data directory.
func StoreGenesis(dataDir string, data []byte) error {
	err := os.MkdirAll(dataDir, 0o755)
	if err != nil {
		return fmt.Errorf("could not create data directory: %w", err)
	}
	err = os.WriteFile(filepath.Join(dataDir, GenesisFileName), data, 0o644)
	if err != nil {
		return fmt.Errorf("could not store genesis file: %w", err)
	}
	return nil
}
