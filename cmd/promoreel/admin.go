package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keagan/promoreel/internal/api"
	"github.com/keagan/promoreel/internal/captions"
	"github.com/keagan/promoreel/internal/config"
	"github.com/keagan/promoreel/internal/logging"
	"github.com/keagan/promoreel/internal/pipeline"
	"github.com/keagan/promoreel/internal/textlayout"
	"github.com/keagan/promoreel/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	serveAddr  string
	serveJSON  bool
	configPath string
	forceInit  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if serveJSON {
			logging.Setup(logging.Options{Verbose: verbose, JSON: true})
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		pipe, closeStore, err := openPipeline(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		srv, err := api.NewServer(log.Logger, cfg, pipe, pipe.Store())
		if err != nil {
			return err
		}
		return srv.Run(cmd.Context())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if util.FileExists(configPath) && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		if err := config.Default().Save(configPath); err != nil {
			return err
		}
		log.Info().Str("path", configPath).Msg("wrote default config")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var listCmd = &cobra.Command{
	Use:       "list [presets|palette|fonts]",
	Short:     "List available resources",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"presets", "palette", "fonts"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		switch args[0] {
		case "presets":
			for _, p := range pipeline.Presets {
				if p.Name == pipeline.PresetOriginal {
					fmt.Printf("%-9s derived from the first input\n", p.Name)
					continue
				}
				fmt.Printf("%-9s %dx%d\n", p.Name, p.Width, p.Height)
			}
		case "palette":
			for _, name := range captions.ColorNames() {
				c := captions.Named[name]
				fmt.Printf("%-10s #%02X%02X%02X\n", name, c.R, c.G, c.B)
			}
			fmt.Printf("hook color #%02X%02X%02X\n", captions.HookColor.R, captions.HookColor.G, captions.HookColor.B)
		case "fonts":
			listFonts(cfg.Layout.FontPath)
		default:
			return fmt.Errorf("unknown resource %q (want presets, palette or fonts)", args[0])
		}
		return nil
	},
}

// listFonts reports the configured font and any font files under ./fonts
func listFonts(configured string) {
	if configured != "" {
		if fs, err := textlayout.LoadFont(configured); err != nil {
			fmt.Printf("configured %s (unusable: %v)\n", configured, err)
		} else {
			fmt.Printf("configured %s (%s)\n", configured, fs.Name())
			fs.Close()
		}
	}
	fmt.Printf("fallback   %s (embedded)\n", textlayout.DefaultFont().Name())

	matches, _ := filepath.Glob(filepath.Join("fonts", "*"))
	for _, m := range matches {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".ttf", ".otf":
			fmt.Printf("available  %s\n", m)
		}
	}
}

var schemaCmd = &cobra.Command{
	Use:       "schema [pass1|pass2]",
	Short:     "Print the JSON schema of a render request",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: pipeline.SchemaNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "pass2"
		if len(args) == 1 {
			name = args[0]
		}
		sc, err := pipeline.Schema(name)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sc)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveJSON, "json-logs", false, "log as JSON")

	configInitCmd.Flags().StringVar(&configPath, "path", "promoreel.yaml", "where to write the config")
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
