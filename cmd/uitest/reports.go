package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect and prune HTML reports",
	}

	cmd.AddCommand(newReportsListCmd())
	cmd.AddCommand(newReportsCountCmd())
	cmd.AddCommand(newReportsCleanupCmd())
	cmd.AddCommand(newReportsFinalizeCmd())
	return cmd
}

func newReportsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			names := a.reports().ListAllReports(cmd.Context())
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), names)
			}

			rows := make([][]string, len(names))
			for i, name := range names {
				rows[i] = []string{strconv.Itoa(i + 1), name}
			}
			printTable(cmd.OutOrStdout(), []string{"#", "REPORT"}, rows)
			return nil
		},
	}
}

func newReportsCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of reports and the retention limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			m := a.reports()
			count := m.ReportCount(cmd.Context())
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), map[string]int{
					"count":     count,
					"retention": m.Retention(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d reports (retention %d) in %s\n", count, m.Retention(), m.Dir())
			return nil
		},
	}
}

func newReportsCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete the oldest reports beyond the retention count",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.reports().CleanupOldReports(cmd.Context())
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "found %d, deleted %d, failed %d, retained %d\n",
				result.Found, result.Deleted, result.Failed, result.Retained)
			return nil
		},
	}
}

func newReportsFinalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize",
		Short: "Rename ExtentReport.html to a timestamped name",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			name := a.reports().FinalizeReport(cmd.Context())
			if name == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No report to finalize")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report renamed to %s\n", name)
			return nil
		},
	}
}
