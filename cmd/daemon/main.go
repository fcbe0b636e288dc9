package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/genricoloni/ytpresence/internal/classifier"
	"github.com/genricoloni/ytpresence/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const stopTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ytpresence:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:           "ytpresence",
		Short:         "Mirror the YouTube tab open in your browser to your Discord status",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "path to the TOML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newClassifyCmd())
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var providerDomain string

	cmd := &cobra.Command{
		Use:   "classify <url>...",
		Short: "Show how tab URLs would be recognized",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := classifier.New(providerDomain)
			out := cmd.OutOrStdout()
			for _, raw := range args {
				ref, ok := c.Classify(raw)
				if !ok {
					fmt.Fprintf(out, "%s\tnot recognized\n", raw)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", raw, ref.Variant, ref.MediaID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerDomain, "domain", config.Default().Provider.Domain, "provider domain to recognize")
	return cmd
}

func run(parent context.Context, opts runOptions) error {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions(opts),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	return app.Stop(stopCtx)
}
