// Package cli wires the cobra commands that start the API in its two modes:
// an HTTP server (serve) and a stdin/stdout JSON-RPC session (local).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ffmpeg-api",
	Short: "Video processing API backed by ffmpeg",
	Long: `ffmpeg-api exposes format conversion, audio extraction, thumbnailing,
watermark removal, media probing and concatenation as remote procedures.
Every call shells out to ffmpeg or ffprobe and relays the result.

Run "serve" for the HTTP/JSON API or "local" for line-delimited JSON-RPC
over stdin/stdout.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Usage()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
