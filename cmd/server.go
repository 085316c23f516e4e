package cmd

import (
	"AutoDJ/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the AutoDJ server",
	Long:  `Start the AutoDJ HTTP server, providing the track search, analysis and mix API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
