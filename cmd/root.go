package cmd

import (
	"fmt"
	"os"

	"AutoDJ/logger"
	"AutoDJ/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autodj",
	Short: "AutoDJ assembles continuous DJ mixes from track highlights.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(os.Getenv("LOG_LEVEL")),
			OutputPath: os.Getenv("LOG_FILE"),
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		})
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Running without a subcommand starts the server.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
