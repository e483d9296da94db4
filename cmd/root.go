package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"ironbank/config"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

const defaultConfigName = ".ironbank.yaml"

var (
	cfgFile string
	cfg     config.Config

	_flag struct {
		debug   bool
		logJSON bool
		journal bool
	}
)

var rootCmd = cobra.Command{
	Use:           "ironbank",
	Short:         "ironbank lending pool ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		if err := loadConfig(); err != nil {
			return err
		}

		if cmd.Flags().Changed("journal") {
			cfg.Pool.Journal = _flag.journal
		}

		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file. default is ~/"+defaultConfigName)
	flags.BoolVar(&_flag.debug, "debug", false, "enable or disable debug model")
	flags.BoolVar(&_flag.logJSON, "log-json", false, "log in json format")
	flags.BoolVar(&_flag.journal, "journal", false, "override pool.journal of the config file")

	structs.DefaultTagName = "json"
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ver string) {
	rootCmd.Version = ver
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig falls back to ~/.ironbank.yaml, then to env only
func loadConfig() error {
	if cfgFile == "" {
		dir, err := homedir.Dir()
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, defaultConfigName)
		if info, err := os.Stat(filename); err == nil && !info.IsDir() {
			cfgFile = filename
		}
	}

	if cfgFile != "" {
		logrus.Debugln("use config file", cfgFile)
	}

	if err := config.Load(cfgFile, &cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	return nil
}

func setupLogging() {
	level := logrus.InfoLevel
	if _flag.debug {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	if _flag.logJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
