package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/servicechain/executor/model/types"
)

var (
	flagService string
	flagMethod  string
	flagPayload string
	flagCaller  string
	flagHeight  uint64
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "run a read method at the latest block, or at --height",
	RunE:  runRead,
}

func init() {
	readCmd.Flags().StringVar(&flagService, "service", "", "service name")
	readCmd.Flags().StringVar(&flagMethod, "method", "", "read method name")
	readCmd.Flags().StringVar(&flagPayload, "payload", "", "JSON payload of the method")
	readCmd.Flags().StringVar(&flagCaller, "caller", types.ZeroAddress.Hex(), "address of the caller")
	readCmd.Flags().Uint64Var(&flagHeight, "height", 0, "height of the block to read at, the latest by default")
	_ = readCmd.MarkFlagRequired("service")
	_ = readCmd.MarkFlagRequired("method")
}

func runRead(cmd *cobra.Command, _ []string) error {
	caller, err := types.ParseAddress(flagCaller)
	if err != nil {
		return fmt.Errorf("invalid caller: %w", err)
	}

	node, _, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer node.Close()

	request := types.TransactionRequest{
		ServiceName: flagService,
		Method:      flagMethod,
		Payload:     flagPayload,
	}

	var response types.ServiceResponse
	if cmd.Flags().Changed("height") {
		response, err = node.Manager.ExecuteReadAt(context.Background(), flagHeight, caller, request)
	} else {
		response, err = node.Manager.ExecuteRead(context.Background(), caller, request)
	}
	if err != nil {
		return err
	}

	return printJSON(cmd, response)
}
