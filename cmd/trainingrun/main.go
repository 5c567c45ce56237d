package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trainingrun",
		Short: "Aggregate public AI leaderboards into daily composite rankings",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(runRunCmd())
	root.AddCommand(leaderboardCmd())
	root.AddCommand(verifyCmd())
	root.AddCommand(runsCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(daemonCmd())

	return root
}

func runRunCmd() *cobra.Command {
	var (
		boards []string
		date   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, score, and persist one dated run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(boards, date, dryRun)
		},
	}

	cmd.Flags().StringSliceVar(&boards, "board", nil, "specific boards to run (default: all enabled)")
	cmd.Flags().StringVar(&date, "date", "", "run date as YYYY-MM-DD (default: today UTC)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "score and report without persisting anything")
	return cmd
}

func leaderboardCmd() *cobra.Command {
	var (
		board      string
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show a board's latest standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(board, jsonOutput, limit)
		},
	}

	cmd.Flags().StringVar(&board, "board", "trs", "board to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "max rows to show")
	return cmd
}

func verifyCmd() *cobra.Command {
	var boards []string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check dataset integrity checksums",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(boards)
		},
	}

	cmd.Flags().StringSliceVar(&boards, "board", nil, "specific boards to verify (default: all)")
	return cmd
}

func runsCmd() *cobra.Command {
	var (
		board string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(board, limit)
		},
	}

	cmd.Flags().StringVar(&board, "board", "", "filter to one board")
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to show")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func daemonCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Start the daily scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
