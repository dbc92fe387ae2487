package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/kakeibo/internal/domain"
)

var (
	baseURL     string
	timeout     time.Duration
	token       string
	databaseURL string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kakeibo-cli",
		Short:         "Kakeibo CLI tool",
		Long:          `A command line interface for administering and querying the kakeibo ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the kakeibo API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("KAKEIBO_TOKEN"), "Session token (defaults to $KAKEIBO_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL for admin commands (defaults to $DATABASE_URL)")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newUserCmd(),
		newLoginCmd(),
		newSummaryCmd(),
		newLockCmd(),
		newCSVCmd(),
	)

	return rootCmd
}

// parsePeriod reads "<year> <month>" positional arguments.
func parsePeriod(args []string) (domain.Period, error) {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return domain.Period{}, fmt.Errorf("invalid year %q", args[0])
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		return domain.Period{}, fmt.Errorf("invalid month %q", args[1])
	}
	return domain.NewPeriod(year, month)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to format response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
