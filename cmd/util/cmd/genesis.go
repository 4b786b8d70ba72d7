package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/servicechain/executor/cmd/util/cmd/common"
)

var flagGenesis string

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "create the genesis state and store block 0 in the data directory",
	RunE:  runGenesis,
}

func init() {
	genesisCmd.Flags().StringVar(&flagGenesis, "genesis", "genesis.toml", "genesis file")
}

func runGenesis(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	genesis, data, err := common.ReadGenesis(flagGenesis)
	if err != nil {
		return err
	}

	node, err := common.InitNode(context.Background(), log, config, genesis)
	if err != nil {
		return err
	}
	defer node.Close()

	err = common.StoreGenesis(config.DataDir, data)
	if err != nil {
		return err
	}

	header, err := node.Storage.Blocks.LatestHeader()
	if err != nil {
		return err
	}

	log.Info().
		Str("data_dir", config.DataDir).
		Str("genesis", filepath.Base(flagGenesis)).
		Uint64("height", header.Height).
		Str("state_root", node.Manager.LatestRoot().Hex()).
		Msg("genesis created")

	return printJSON(cmd, header)
}
