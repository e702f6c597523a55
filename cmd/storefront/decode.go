// cmd/storefront/decode.go
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/agent/stream"
	"storefront/internal/common/logger"
)

var decodeVerbose bool

var decodeCmd = &cobra.Command{
	Use:   "decode [file|-]",
	Short: "Decode a saved agent completion body into a chat reply",
	Long: `Reads a newline delimited agent completion body from a file, or from stdin
when the argument is "-" or missing, and prints the decoded reply as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().BoolVarP(&decodeVerbose, "verbose", "v", false, "log skipped lines to stderr")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	level := "warn"
	if decodeVerbose {
		level = "debug"
	}
	log := logger.NewStructured(level, "console", "stderr")

	reply := stream.NewDecoder(log).DecodeReader(in)
	return printJSON(cmd, reply)
}
