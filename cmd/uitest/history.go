package main

import (
	"errors"
	"strconv"

	"github.com/hairizuan-noorazman/ui-bdd/runhistory"
	"github.com/spf13/cobra"
)

var errHistoryDisabled = errors.New("run history is disabled, set history.enabled=true")

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded scenario runs",
	}

	cmd.AddCommand(newHistoryListCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent scenario runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			runs, _, err := a.historyStores(false)
			if err != nil {
				return err
			}
			if runs == nil {
				return errHistoryDisabled
			}

			filter := runhistory.ListFilter{Status: runhistory.Status(status), Limit: limit, Offset: offset}
			if filter.Status != "" && !filter.Status.IsValid() {
				return runhistory.ErrInvalidStatus
			}

			list, err := runs.ListRecent(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}

			headers := []string{"ID", "SCENARIO", "BROWSER", "STATUS", "DURATION MS", "STARTED AT", "REPORT"}
			var rows [][]string
			for _, r := range list {
				report := r.ReportName
				if report == "" {
					report = "-"
				}
				rows = append(rows, []string{
					r.ID.String(),
					r.Name,
					r.Browser,
					string(r.Status),
					strconv.FormatInt(r.DurationMS, 10),
					r.StartedAt.Format("2006-01-02 15:04:05"),
					report,
				})
			}
			printTable(cmd.OutOrStdout(), headers, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only runs with this status")
	cmd.Flags().IntVar(&limit, "limit", runhistory.DefaultListLimit, "maximum number of runs")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")
	return cmd
}
