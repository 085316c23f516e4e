package cmd

import (
	"context"
	"fmt"
	"os"

	"AutoDJ/config"
	"AutoDJ/core/audio"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <audio file>",
	Short: "Analyze a local audio file and print its highlights",
	Long:  `Decode a local audio file, extract its energy envelope and print the detected highlight intervals. Useful for inspecting what the mix pipeline would pick without running the server.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		decoder := audio.NewFFmpegDecoder(cfg.FFmpegPath)

		signal, err := decoder.Load(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", args[0], err)
		}

		analysis := audio.AnalyzeSignal(signal)
		fmt.Fprintf(os.Stdout, "file: %s\n", args[0])
		fmt.Fprintf(os.Stdout, "duration: %.1fs, envelope frames: %d\n",
			signal.Duration(), len(analysis.Envelope.Values))

		if len(analysis.Highlights) == 0 {
			fmt.Fprintln(os.Stdout, "no highlights detected (a mix would use a midpoint excerpt)")
			return nil
		}
		for i, h := range analysis.Highlights {
			fmt.Fprintf(os.Stdout, "highlight %d: %.1fs - %.1fs (peak %.1fs, intensity %.3f)\n",
				i+1, h.Start, h.End, h.PeakTime, h.Intensity)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
