package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/servicechain/executor/cmd/util/cmd/common"
	"github.com/servicechain/executor/model/encoding/json"
)

var (
	flagConfig string

	v   = viper.New()
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "executor",
	Short:         "Execute service transactions on a local data directory",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var RootCmd = rootCmd

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "optional config file (toml, yaml or json)")
	common.InitFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(genesisCmd, execCmd, readCmd)

	log = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger()
}

// loadConfig resolves the shared settings of cmd, in decreasing priority
// from flags, EXECUTOR_ environment variables and the config file.
func loadConfig(cmd *cobra.Command) (*common.Config, error) {
	v.SetEnvPrefix(common.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("could not bind flags: %w", err)
	}

	if flagConfig != "" {
		v.SetConfigFile(flagConfig)
		err = v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	config, err := common.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	log = log.Level(config.LogLevel)
	return config, nil
}

// openNode loads the config and bootstraps the data directory on its
// stored genesis.
func openNode(cmd *cobra.Command) (*common.Node, *common.Config, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	genesis, err := common.StoredGenesis(config.DataDir)
	if err != nil {
		return nil, nil, err
	}

	node, err := common.InitNode(context.Background(), log, config, genesis)
	if err != nil {
		return nil, nil, err
	}
	return node, config, nil
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}
