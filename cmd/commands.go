package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skadri1601/TradeSignal-sub001/internal/application/feed"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/config"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/hub"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/server"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/stream"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func NewRootCommand(version, commit, date string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tradesignal",
		Short: "TradeSignal trade-stream client and development push source",
		Long: `tradesignal subscribes to the TradeSignal push channel and keeps a local
trade cache fresh as trade_created and trade_updated events arrive.

The serve command runs a development push source that speaks the same
protocol, so the client can be exercised without the production API.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		newWatchCommand(opts),
		newServeCommand(opts),
		newEndpointCommand(opts),
	)

	return rootCmd
}

func (o *rootOptions) load() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.configPath, o.envFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.NewLogrusLogger(&cfg.Log), nil
}

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Subscribe to the trade stream and serve its status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.APIBaseURL = baseURL
			}

			f := feed.New(feed.NewCache(), log)
			client := stream.New(
				cfg.APIBaseURL,
				f.Handle,
				stream.WithLogger(log),
				stream.WithEnabled(cfg.Stream.Enabled),
				stream.WithStatusListener(func(s stream.Status) {
					log.WithField("component", "stream").Infof("stream status: %s", s)
				}),
			)

			router := InitWatchRouter(client, f, log)
			httpSrv := server.NewHTTPServer(cfg.Status.Addr, router)

			log.Infof("watching %s, status on %s", client.Endpoint(), cfg.Status.Addr)

			app := newApplication(log.WithField("app", "watch"), httpSrv)
			app.onStart(func() { client.Start(cmd.Context()) })
			app.onStop(func() error { return client.Close() })
			return app.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&baseURL, "api-url", "", "API base URL (overrides config)")
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development trade push source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}

			hubInstance := hub.New(log)
			if err := hubInstance.Start(cmd.Context()); err != nil {
				return fmt.Errorf("failed to start hub: %w", err)
			}
			log.Infof("hub started, running status: %v", hubInstance.IsRunning())

			router := InitServeRouter(hubInstance, log)
			httpSrv := server.NewHTTPServer(cfg.Serve.Addr, router)

			app := newApplication(log.WithField("app", "serve"), httpSrv)
			app.onStop(func() error { return hubInstance.Stop(cmd.Context()) })
			return app.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func newEndpointCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint [base-url]",
		Short: "Print the push-channel URL derived from an API base",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := ""
			if len(args) == 1 {
				base = args[0]
			} else {
				cfg, err := config.Load(opts.configPath, opts.envFile)
				if err != nil {
					return err
				}
				base = cfg.APIBaseURL
			}
			fmt.Fprintln(cmd.OutOrStdout(), stream.DeriveEndpoint(base))
			return nil
		},
	}
}
