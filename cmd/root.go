package cmd

import (
	"fmt"
	"os"

	"campus-intake/internal/config"
	"campus-intake/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "campus-intake",
	Short: "Campus Intake Appointment System",
	Long: `A campus intake appointment booking system built with Go.
This system provides:
- Appointment slot reservation with strict capacity enforcement
- Guided enrollment wizard for new students
- Front-desk check-in by registration code, contact or name
- Administrative slot, level and settings management
- Redis caching and async notification delivery
Example usage:
  campus-intake server --port 8080     # Start the intake server
  campus-intake migrate up             # Apply database migrations
  campus-intake loadtest --concurrent 100 # Hammer one slot with concurrent reservations`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.Get()
		if err := logger.InitWithConfig(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
			// Fallback to simple init if config-based init fails
			logger.Init(verbose)
			logger.Warn("Failed to initialize logger with config, using fallback: %v", err)
		}
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.campus-intake.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".campus-intake")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	config.Init()
}
