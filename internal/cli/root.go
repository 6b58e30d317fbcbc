package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vietddude/sfclient/internal/api"
	"github.com/vietddude/sfclient/internal/core/config"
	"github.com/vietddude/sfclient/internal/infra/rpc"
	"github.com/vietddude/sfclient/internal/platform/logging"
)

var (
	cfgPath    string
	isDebug    bool
	rawOutput  bool
	mvip       string
	login      string
	password   string
	apiVersion string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "sfcli",
	Short: "Storage cluster management client",
	Long: `sfcli manages a storage cluster through its JSON-RPC API.

Connection settings come from flags, then SF_MVIP, SF_USERNAME, SF_PASSWORD
and SF_API_VERSION (a .env file is read if present), then the config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "sfcli.yaml", "config file, ignored when missing")
	flags.StringVar(&mvip, "sf-mvip", "", "cluster management address (env SF_MVIP)")
	flags.StringVar(&login, "sf-login", "", "cluster admin login (env SF_USERNAME)")
	flags.StringVar(&password, "sf-password", "", "cluster admin password (env SF_PASSWORD)")
	flags.StringVar(&apiVersion, "api-version", "", "JSON-RPC API version, e.g. 7.0 (env SF_API_VERSION)")
	flags.BoolVar(&isDebug, "debug", false, "enable debug logging (env SFCLIENT_DEBUG)")
	flags.BoolVar(&rawOutput, "raw", false, "print raw JSON instead of tables")
	flags.DurationVar(&timeout, "timeout", 0, "per-request timeout (default 30s)")
}

// session is what every subcommand needs to talk to the cluster.
type session struct {
	logger *slog.Logger
	client *rpc.Client
	api    *api.Service
	out    io.Writer
	raw    bool
}

func (s *session) Close() {
	if h, ok := s.client.Health(); ok && h.Requests > 0 {
		s.logger.Debug("Endpoint health",
			"requests", h.Requests,
			"failures", h.Failures,
			"avg_latency", h.AverageLatency,
			"degraded", h.Degraded,
		)
	}
	_ = s.client.Close()
}

// newSession resolves settings as flag, then env, then config file.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadOptional(cfgPath)
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if isDebug || envBool("SFCLIENT_DEBUG") {
		level = slog.LevelDebug
	}
	logger := logging.Init(level, cfg.Logging.Format, cmd.ErrOrStderr())

	cfg.Cluster.MVIP = firstNonEmpty(mvip, os.Getenv("SF_MVIP"), cfg.Cluster.MVIP)
	cfg.Cluster.Login = firstNonEmpty(login, os.Getenv("SF_USERNAME"), cfg.Cluster.Login)
	cfg.Cluster.Password = firstNonEmpty(password, os.Getenv("SF_PASSWORD"), cfg.Cluster.Password)
	cfg.Cluster.APIVersion = firstNonEmpty(apiVersion, os.Getenv("SF_API_VERSION"), cfg.Cluster.APIVersion)
	if timeout > 0 {
		cfg.Client.Timeout = timeout
	}

	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("cluster settings: %w", err)
	}
	client, err := rpc.NewClient(clientCfg, rpc.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("Client ready", "endpoint", clientCfg.Endpoint, "version", clientCfg.Version)

	return &session{
		logger: logger,
		client: client,
		api:    api.New(client),
		out:    cmd.OutOrStdout(),
		raw:    rawOutput,
	}, nil
}

// withSession adapts a session-aware handler to cobra's RunE.
func withSession(run func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return run(cmd.Context(), s, args)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive integer", what, arg)
	}
	return id, nil
}
