package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vietddude/sfclient/internal/infra/rpc"
)

var (
	callNoRetry       bool
	callNonIdempotent bool
)

var callCmd = &cobra.Command{
	Use:   "call <Method> [params-json]",
	Short: "Issue any API method and print the raw result",
	Example: `  sfcli call GetClusterInfo
  sfcli call ListActiveVolumes '{"startVolumeID": 0, "limit": 10}'
  sfcli call CreateVolume '{"name":"v1","accountID":1,"totalSize":1000000000}' --non-idempotent`,
	Args: cobra.RangeArgs(1, 2),
	RunE: withSession(runCall),
}

func init() {
	callCmd.Flags().BoolVar(&callNoRetry, "no-retry", false, "send the request exactly once")
	callCmd.Flags().BoolVar(&callNonIdempotent, "non-idempotent", false, "do not repeat after a transport error")
	rootCmd.AddCommand(callCmd)
}

func runCall(ctx context.Context, s *session, args []string) error {
	var params map[string]any
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			return fmt.Errorf("params must be a JSON object: %w", err)
		}
	}

	var opts []rpc.CallOption
	switch {
	case callNoRetry:
		opts = append(opts, rpc.NoRetry())
	case callNonIdempotent:
		opts = append(opts, rpc.NonIdempotent())
	}

	result, err := s.client.Call(ctx, args[0], params, opts...)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(result, &doc); err != nil {
		_, err = fmt.Fprintln(s.out, string(result))
		return err
	}
	return writeJSON(s.out, doc)
}
