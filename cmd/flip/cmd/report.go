package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/report"
)

func ReportCmd() *cobra.Command {
	var (
		seedDir  string
		format   string
		out      string
		timezone string
	)

	cmd := &cobra.Command{
		Use:   "report <project-id>",
		Short: "Generate a project report (text, markdown or json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone %q: %w", timezone, err)
			}

			s, err := openStore(seedDir)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			project, err := s.projects.ByID(ctx, id)
			if err != nil {
				return fmt.Errorf("project %d: %w", id, err)
			}
			updates, err := s.updates.ByProject(ctx, id)
			if err != nil {
				return err
			}

			r, err := report.Generate(*project, updates, time.Now(), loc)
			if err != nil {
				return err
			}

			if out == "-" {
				return writeReport(cmd.OutOrStdout(), r, format)
			}
			if out == "" {
				out = strings.TrimSuffix(report.Filename(project.Address), ".txt") + extension(format)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			err = writeReport(f, r, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d updates)\n", out, r.TotalUpdates)
			return nil
		},
	}

	cmd.Flags().StringVar(&seedDir, "seed", "", "directory with projects.json and updates.json (default: bundled data)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, markdown or json")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout, empty for the report's own filename")
	cmd.Flags().StringVar(&timezone, "tz", "Local", "timezone for report dates")
	return cmd
}

func writeReport(w io.Writer, r *model.Report, format string) error {
	switch format {
	case "text", "txt":
		_, err := io.WriteString(w, report.Text(r))
		return err
	case "markdown", "md":
		data, err := report.Markdown(r)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return fmt.Errorf("unknown format %q", format)
}

func extension(format string) string {
	switch format {
	case "markdown", "md":
		return ".md"
	case "json":
		return ".json"
	}
	return ".txt"
}
