package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/precheck/internal/config"
	"github.com/dshills/precheck/internal/store"
)

var (
	flagHistoryLimit int
	flagHistoryAll   bool
	flagHistoryRepo  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded review runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory()
		if err != nil {
			return err
		}
		defer st.Close()

		repo := flagHistoryRepo
		if !flagHistoryAll && repo == "" {
			if wd, err := os.Getwd(); err == nil {
				repo = wd
			}
		}
		if flagHistoryAll {
			repo = ""
		}

		records, err := st.Recent(repo, flagHistoryLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(os.Stdout, "No recorded runs.")
			return nil
		}

		for _, r := range records {
			fmt.Fprintf(os.Stdout, "%s  %-15s %3d/%3d findings  %s (%s)\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.Verdict,
				r.FilteredFindings,
				r.RawFindings,
				r.Repo,
				r.Branch)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory()
		if err != nil {
			return err
		}
		defer st.Close()

		repo := flagHistoryRepo
		if flagHistoryAll {
			repo = ""
		} else if repo == "" {
			if wd, err := os.Getwd(); err == nil {
				repo = wd
			}
		}

		n, err := st.Clear(repo)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Deleted %d recorded run(s).\n", n)
		return nil
	},
}

func openHistory() (*store.Store, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	path := cfg.History.Path
	if path == "" {
		path, err = store.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.PersistentFlags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum runs to show")
	historyCmd.PersistentFlags().BoolVar(&flagHistoryAll, "all", false, "Include runs from all repositories")
	historyCmd.PersistentFlags().StringVar(&flagHistoryRepo, "repo", "", "Repository root to filter by")
}
