package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/keagan/promoreel/internal/config"
	"github.com/keagan/promoreel/internal/logging"
	"github.com/keagan/promoreel/internal/pipeline"
	"github.com/keagan/promoreel/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "promoreel",
	Short:         "promoreel - 9:16 promo video composer",
	Long:          "Turns clips or photos plus a description into a vertical promo video with captions, a call to action and music.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./promoreel.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(captionsCmd)
	rootCmd.AddCommand(makeCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(segmentsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(schemaCmd)
}

// openPipeline builds the store and pipeline from the context config
func openPipeline(cmd *cobra.Command) (*pipeline.Pipeline, func(), error) {
	cfg := config.FromContext(cmd.Context())

	st, err := store.New(cmd.Context(), cfg.Store, cfg.WorkDir)
	if err != nil {
		return nil, nil, err
	}
	pipe, err := pipeline.New(log.Logger, cfg, st)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return pipe, func() { st.Close() }, nil
}
