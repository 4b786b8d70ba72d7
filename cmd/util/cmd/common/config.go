package common

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding flags, for
// example EXECUTOR_DATA_DIR for --data-dir.
const EnvPrefix = "EXECUTOR"

const (
	FlagLogLevel         = "log-level"
	FlagDataDir          = "data-dir"
	FlagCyclesLimit      = "cycles-limit"
	FlagMaxValueSize     = "max-value-size"
	FlagLedgerCapacity   = "ledger-capacity"
	FlagTraceSensitivity = "trace-sensitivity"
)

// Config holds the settings shared by all commands, resolved from flags,
// environment and the optional config file.
type Config struct {
	LogLevel zerolog.Level
	DataDir  string
	// CyclesLimit is the block cycles limit used when a block header does
	// not set one, and the cycles limit of reads.
	CyclesLimit      uint64
	MaxValueSize     uint64
	LedgerCapacity   int
	TraceSensitivity float64
}

// InitFlags registers the shared flags.
func InitFlags(flags *pflag.FlagSet) {
	flags.String(FlagLogLevel, "info", "log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String(FlagDataDir, "data", "directory of the block storage")
	flags.Uint64(FlagCyclesLimit, 1_000_000, "default block cycles limit")
	flags.String(FlagMaxValueSize, "1MiB", "maximum size of a state value, such as 512KiB or 2MB")
	flags.Int(FlagLedgerCapacity, 1000, "number of state roots retained by the ledger")
	flags.Float64(FlagTraceSensitivity, 0, "fraction of blocks traced into the log, 0 disables tracing")
}

// LoadConfig reads the shared settings from v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	level, err := zerolog.ParseLevel(v.GetString(FlagLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FlagLogLevel, err)
	}

	maxValueSize, err := units.RAMInBytes(v.GetString(FlagMaxValueSize))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FlagMaxValueSize, err)
	}
	if maxValueSize <= 0 {
		return nil, fmt.Errorf("invalid %s: must be positive", FlagMaxValueSize)
	}

	cyclesLimit := v.GetUint64(FlagCyclesLimit)
	if cyclesLimit == 0 {
		return nil, fmt.Errorf("invalid %s: must be positive", FlagCyclesLimit)
	}

	capacity := v.GetInt(FlagLedgerCapacity)
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid %s: must be positive", FlagLedgerCapacity)
	}

	sensitivity := v.GetFloat64(FlagTraceSensitivity)
	if sensitivity < 0 || sensitivity > 1 {
		return nil, fmt.Errorf("invalid %s: must be between 0 and 1", FlagTraceSensitivity)
	}

	dataDir := v.GetString(FlagDataDir)
	if dataDir == "" {
		return nil, fmt.Errorf("missing %s", FlagDataDir)
	}

	return &Config{
		LogLevel:         level,
		DataDir:          dataDir,
		CyclesLimit:      cyclesLimit,
		MaxValueSize:     uint64(maxValueSize),
		LedgerCapacity:   capacity,
		TraceSensitivity: sensitivity,
	}, nil
}
