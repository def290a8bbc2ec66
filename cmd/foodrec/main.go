// Command foodrec queries the recipe recommender from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	configPath string
	apiURL     string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "foodrec",
	Short: "Recipe recommendations from nutritional targets",
	Long: `foodrec sends nutritional targets and ingredients to a Gradio
recommendation Space and prints the recipes it suggests.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "endpoint URL or Space id (overrides stored value)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(recommendCmd, runTestsCmd, endpointCmd)
	endpointCmd.AddCommand(endpointGetCmd, endpointSetCmd, endpointDetectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
