package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/templui/fliptrack/internal/model"
)

func ProjectsCmd() *cobra.Command {
	var seedDir string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects in the seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(seedDir)
			if err != nil {
				return err
			}

			projects, err := s.projects.All(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tADDRESS\tSTATUS\tPROGRESS\tUPDATES")
			for _, p := range projects {
				progress := "-"
				if p.Progress != nil {
					progress = fmt.Sprintf("%.0f%%", model.ClampProgress(p.Progress))
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Address, p.Status, progress, s.updateCount(cmd.Context(), p.ID))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&seedDir, "seed", "", "directory with projects.json and updates.json (default: bundled data)")
	return cmd
}
