package cmd

import (
	"WhatsGrapp/internal/config"
	"WhatsGrapp/internal/lib/logger"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logPath    string
)

var rootCmd = &cobra.Command{
	Use:   "whatsgrapp",
	Short: "WhatsGrapp turns a WhatsApp chat into a storefront",
	Long: `WhatsGrapp runs the WhatsApp onboarding conversation that registers a store,
adds products and hands out checkout links, plus the REST API around it.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "config.yml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "/var/log/", "path to log file directory")
}

// loadConfig reads the config file, or falls back to defaults and env when it is missing.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		return config.MustLoad(configPath), nil
	}
	return config.Defaults()
}

func setup() (*config.Config, *slog.Logger, error) {
	conf, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return conf, logger.SetupLogger(conf.Env, logPath), nil
}
