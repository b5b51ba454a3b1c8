package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬ ┬┌─┐┌─┐┌┬┐
  │││├┤ ├┤  │
  └┴┘└─┘└   ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "weft-demo",
		Short: "Demo server for the Weft product image uploader",
		Long: `weft-demo runs a product catalog page built on the Weft
framework: a server-rendered uploader widget with live updates over
WebSocket, a temp upload store (disk or S3), and Prometheus metrics.

The product image API itself is external; point WEFT_PRODUCT_API at
it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
