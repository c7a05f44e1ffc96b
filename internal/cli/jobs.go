package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/psdatlas/pkg/jobs"
)

// jobsCommand creates the jobs history command.
func (c *CLI) jobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show the history of pack runs",
	}

	cmd.AddCommand(c.jobsListCommand())
	cmd.AddCommand(c.jobsShowCommand())
	cmd.AddCommand(c.jobsDeleteCommand())

	return cmd
}

func (c *CLI) openJobs(cmd *cobra.Command) (jobs.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return c.newJobStore(cmd.Context(), cfg)
}

// jobsListCommand creates the "jobs list" subcommand.
func (c *CLI) jobsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openJobs(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No jobs recorded")
				return nil
			}
			fmt.Println(jobsTable(list, time.Now()).Render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", jobs.DefaultListLimit, "maximum number of jobs")
	return cmd
}

// jobsShowCommand creates the "jobs show" subcommand.
func (c *CLI) jobsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := jobs.ValidateID(args[0]); err != nil {
				return err
			}
			store, err := c.openJobs(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJob(job)
			return nil
		},
	}
}

// jobsDeleteCommand creates the "jobs delete" subcommand.
func (c *CLI) jobsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := jobs.ValidateID(args[0]); err != nil {
				return err
			}
			store, err := c.openJobs(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted job %s", args[0])
			return nil
		},
	}
}

func printJob(job *jobs.Job) {
	fmt.Println(StyleTitle.Render(job.ID))
	printKeyValue("Input", job.Input)
	printKeyValue("Created", job.CreatedAt.Local().Format(time.DateTime))
	printKeyValue("Regions", strconv.Itoa(job.Regions))
	printKeyValue("Atlas", fmt.Sprintf("%dx%d", job.AtlasWidth, job.AtlasHeight))
	printKeyValue("Padding", strconv.Itoa(job.Padding))
	printKeyValue("Coordinates", job.CoordinateSystem)
	printKeyValue("Formats", strings.Join(job.Formats, ", "))
	printKeyValue("Duration", job.Duration.Round(time.Millisecond).String())
	if job.SourceHash != "" {
		printKeyValue("Source hash", job.SourceHash[:min(12, len(job.SourceHash))])
	}
	if job.Cached {
		printKeyValue("Cache", StyleSuccess.Render(iconCached))
	}
}

func jobsTable(list []*jobs.Job, now time.Time) *table.Table {
	rows := make([][]string, len(list))
	for i, j := range list {
		rows[i] = []string{
			j.ID[:min(8, len(j.ID))],
			j.Input,
			strconv.Itoa(j.Regions),
			fmt.Sprintf("%dx%d", j.AtlasWidth, j.AtlasHeight),
			strings.Join(j.Formats, ","),
			formatRelativeTime(j.CreatedAt, now),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("ID", "Input", "Regions", "Atlas", "Formats", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			if col == 0 {
				return listSelectedStyle
			}
			return listNormalStyle
		})
}

// formatRelativeTime renders t relative to now, switching to a date after a week.
func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}
