package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/servicechain/executor/model/encoding/json"
	"github.com/servicechain/executor/model/types"
)

var flagBlock string

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "execute a JSON block on top of the latest block of the data directory",
	RunE:  runExec,
}

func init() {
	execCmd.Flags().StringVar(&flagBlock, "block", "block.json", "JSON block: a header and ordered signed transactions")
}

func readBlock(path string) (*types.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read block file: %w", err)
	}

	var block types.Block
	err = json.Unmarshal(data, &block)
	if err != nil {
		return nil, fmt.Errorf("could not decode block: %w", err)
	}

	for i, tx := range block.Transactions {
		expected, err := tx.Raw.Hash()
		if err != nil {
			return nil, fmt.Errorf("could not hash transaction %d: %w", i, err)
		}
		if tx.TxHash == types.ZeroHash {
			block.Transactions[i].TxHash = expected
			continue
		}
		if tx.TxHash != expected {
			return nil, fmt.Errorf("transaction %d has hash %s, expected %s", i, tx.TxHash.Hex(), expected.Hex())
		}
	}
	return &block, nil
}

func runExec(cmd *cobra.Command, _ []string) error {
	block, err := readBlock(flagBlock)
	if err != nil {
		return err
	}

	node, config, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer node.Close()

	header := &block.Header
	if header.Height == 0 {
		header.Height = node.Manager.LatestHeight() + 1
	}
	if header.CyclesLimit == 0 {
		header.CyclesLimit = config.CyclesLimit
	}
	if header.Timestamp == 0 {
		header.Timestamp = uint64(time.Now().Unix())
	}

	resp, err := node.Manager.ComputeBlock(context.Background(), block)
	if err != nil {
		return err
	}

	return printJSON(cmd, resp)
}
