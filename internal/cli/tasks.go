package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Analysis task management",
}

type taskInfo struct {
	Name        string
	Description string
	AppliesTo   string
}

var knownTasks = []taskInfo{
	{
		Name:        "secrets",
		Description: "Flags credentials, API keys, and tokens in added lines",
		AppliesTo:   "all changes",
	},
	{
		Name:        "hygiene",
		Description: "Flags leftover debug statements and TODO markers",
		AppliesTo:   "all changes",
	},
	{
		Name:        "largechange",
		Description: "Flags files with many added lines and no accompanying test changes",
		AppliesTo:   "all changes",
	},
	{
		Name:        "angular",
		Description: "Flags untyped any, unmanaged subscriptions, and direct DOM access",
		AppliesTo:   "Angular workspaces",
	},
	{
		Name:        "policy",
		Description: "Applies team-defined rules from a YAML rules file",
		AppliesTo:   "when a rules file is configured",
	},
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in analysis tasks",
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range knownTasks {
			fmt.Fprintf(os.Stdout, "%s:\n", info.Name)
			fmt.Fprintf(os.Stdout, "  %s\n", info.Description)
			fmt.Fprintf(os.Stdout, "  Applies to: %s\n", info.AppliesTo)
			fmt.Fprintln(os.Stdout)
		}
	},
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
}
