package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"raybands/internal/format"
	"raybands/internal/store"
)

var runsFlags struct {
	dbPath   string
	limit    int
	markdown bool
}

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recorded runs, or show one run's band detail",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsFlags.dbPath, "db", defaultDBPath(), "Run-history DB path")
	f.IntVar(&runsFlags.limit, "limit", 20, "Max runs to list")
	f.BoolVar(&runsFlags.markdown, "markdown", false, "Render tables as Markdown")
}

func runRuns(cmd *cobra.Command, args []string) error {
	st, err := store.Open(runsFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	mode := format.ASCII
	if runsFlags.markdown {
		mode = format.Markdown
	}

	if len(args) == 1 {
		r, err := st.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Run %s  started %s  process %d  source %s  surface %s\n\n",
			r.ID, format.FmtTime(r.StartedAt), r.ProcessID, r.Source, r.Surface)
		fmt.Fprintln(cmd.OutOrStdout(), format.RunDetailTable(r, mode))
		return nil
	}

	runs, err := st.ListRuns(runsFlags.limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.RunsTable(runs, mode))
	return nil
}
