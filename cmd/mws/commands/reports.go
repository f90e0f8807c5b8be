package commands

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

var (
	reportColumns = []string{"Report ID", "Type", "Request ID", "Available"}
	reportPaths   = [][]string{{"ReportId"}, {"ReportType"}, {"ReportRequestId"}, {"AvailableDate"}}

	reportRequestColumns = []string{"Request ID", "Type", "Status", "Report ID", "Submitted"}
	reportRequestPaths   = [][]string{
		{"ReportRequestId"},
		{"ReportType"},
		{"ReportProcessingStatus"},
		{"GeneratedReportId"},
		{"SubmittedDate"},
	}
)

// NewReportsCommand creates the reports command group.
func NewReportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Request and download reports",
		Long:    "Request report generation, follow its status and download the result",
	}

	cmd.AddCommand(newReportsRequestCommand())
	cmd.AddCommand(newReportsListCommand())
	cmd.AddCommand(newReportsRequestsCommand())
	cmd.AddCommand(newReportsStatusCommand())
	cmd.AddCommand(newReportsGetCommand())

	return cmd
}

func newReportsRequestCommand() *cobra.Command {
	var (
		startDate    string
		endDate      string
		marketplaces []string
	)

	cmd := &cobra.Command{
		Use:   "request REPORT_TYPE",
		Short: "Request a report",
		Long:  "Ask the service to generate a report, e.g. _GET_MERCHANT_LISTINGS_DATA_",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(startDate)
			if err != nil {
				return err
			}

			end, err := parseDate(endDate)
			if err != nil {
				return err
			}

			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			info, err := client.Reports().Request(cmd.Context(), &mws.ReportRequest{
				ReportType:   args[0],
				StartDate:    start,
				EndDate:      end,
				Marketplaces: marketplaces,
			})
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), info, treeTable(info))
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "start of the report window")
	cmd.Flags().StringVar(&endDate, "end", "", "end of the report window")
	cmd.Flags().StringSliceVar(&marketplaces, "marketplace", nil, "marketplaces to include")

	return cmd
}

func reportListFlags(cmd *cobra.Command, options *mws.ReportListOptions) {
	cmd.Flags().StringSliceVar(&options.ReportTypes, "type", nil, "report types to include")
	cmd.Flags().StringSliceVar(&options.RequestIDs, "request-id", nil, "report request ids to include (at most 100)")
}

func newReportsListCommand() *cobra.Command {
	options := &mws.ReportListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			reports, err := client.Reports().List(cmd.Context(), options)
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), reports, nodeTable(reports, reportColumns, reportPaths))
		},
	}

	reportListFlags(cmd, options)

	return cmd
}

func newReportsRequestsCommand() *cobra.Command {
	options := &mws.ReportListOptions{}

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List report requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			requests, err := client.Reports().ListRequests(cmd.Context(), options)
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), requests, nodeTable(requests, reportRequestColumns, reportRequestPaths))
		},
	}

	reportListFlags(cmd, options)

	return cmd
}

func newReportsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status REQUEST_ID",
		Short: "Show the status of a report request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			status, err := client.Reports().RequestStatus(cmd.Context(), args[0])
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), status, treeTable(status))
		},
	}
}

func newReportsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get REPORT_ID",
		Short: "Download a report",
		Long:  "Download a generated report. Tab-separated reports are shown as rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			report, err := client.Reports().Get(cmd.Context(), args[0])
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			if report.Document != nil {
				return writeOutput(cmd.OutOrStdout(), report, treeTable(report.Document))
			}

			return writeOutput(cmd.OutOrStdout(), report, func(table *tablewriter.Table) {
				header := make([]interface{}, len(report.Header))
				for i, column := range report.Header {
					header[i] = column
				}

				table.Header(header...)

				for _, row := range report.Rows {
					cells := make([]string, len(report.Header))
					for i, column := range report.Header {
						cells[i] = row[column]
					}

					_ = table.Append(cells)
				}
			})
		},
	}
}
