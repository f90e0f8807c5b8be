package commands

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

var (
	feedColumns = []string{"Submission ID", "Type", "Status", "Submitted", "Completed"}
	feedPaths   = [][]string{
		{"FeedSubmissionId"},
		{"FeedType"},
		{"FeedProcessingStatus"},
		{"SubmittedDate"},
		{"CompletedProcessingDate"},
	}
)

// FeedStatus is one row of the feeds status output.
type FeedStatus struct {
	SubmissionID string `json:"submission_id" yaml:"submission_id"`
	Status       string `json:"status"        yaml:"status"`
}

type feedOptions struct {
	dryRun          bool
	purgeAndReplace bool
	marketplaces    []string
}

func (o *feedOptions) submitOptions() *mws.SubmitFeedOptions {
	return &mws.SubmitFeedOptions{
		DryRun:          o.dryRun,
		PurgeAndReplace: o.purgeAndReplace,
		Marketplaces:    o.marketplaces,
	}
}

// NewFeedsCommand creates the feeds command group.
func NewFeedsCommand() *cobra.Command {
	options := &feedOptions{}

	cmd := &cobra.Command{
		Use:     "feeds",
		Aliases: []string{"feed"},
		Short:   "Submit feeds and follow their processing",
		Long:    "Submit inventory, price and product feeds, and check how the service processed them",
	}

	cmd.PersistentFlags().BoolVar(&options.dryRun, "dry-run", false, "print the encoded feed instead of submitting it")
	cmd.PersistentFlags().BoolVar(&options.purgeAndReplace, "purge-and-replace", false, "replace the whole catalogue with this feed")
	cmd.PersistentFlags().StringSliceVar(&options.marketplaces, "marketplace", nil, "marketplaces the feed applies to")

	cmd.AddCommand(newFeedsSubmitCommand(options))
	cmd.AddCommand(newFeedsStockCommand(options))
	cmd.AddCommand(newFeedsPriceCommand(options))
	cmd.AddCommand(newFeedsDeleteCommand(options))
	cmd.AddCommand(newFeedsListCommand())
	cmd.AddCommand(newFeedsStatusCommand())
	cmd.AddCommand(newFeedsResultCommand())

	return cmd
}

func printSubmission(cmd *cobra.Command, submission *mws.FeedSubmission) error {
	if submission.Info == nil {
		_, err := cmd.OutOrStdout().Write(submission.Payload)

		return err //nolint:wrapcheck // plain write
	}

	return writeOutput(cmd.OutOrStdout(), submission.Info, treeTable(submission.Info))
}

func newFeedsSubmitCommand(options *feedOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit FEED_TYPE",
		Short: "Submit a prepared feed document",
		Long:  "Upload a feed document as-is, e.g. mws feeds submit _POST_PRODUCT_DATA_ --file products.xml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return ErrFeedBodyRequired
			}

			payload, err := os.ReadFile(file) //nolint:gosec // user-supplied input file
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}

			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			submission, err := client.Feeds().Submit(cmd.Context(), args[0], payload, options.submitOptions())
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return printSubmission(cmd, submission)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "feed document to upload")

	return cmd
}

func newFeedsStockCommand(options *feedOptions) *cobra.Command {
	var latency int

	cmd := &cobra.Command{
		Use:   "stock SKU=QUANTITY...",
		Short: "Update stock levels",
		Long:  "Submit an inventory feed setting the quantity of each SKU",
		Args:  requireArgs(1, "SKU=QUANTITY pair"),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := splitPairs(args, ErrInvalidStockArg)
			if err != nil {
				return err
			}

			updates := make([]mws.StockUpdate, 0, len(pairs))

			for _, pair := range pairs {
				quantity, err := strconv.Atoi(pair[1])
				if err != nil || quantity < 0 {
					return fmt.Errorf("%w: %s=%s", ErrInvalidStockArg, pair[0], pair[1])
				}

				update := mws.StockUpdate{SKU: pair[0], Quantity: &quantity}
				if cmd.Flags().Changed("latency") {
					days := latency
					update.FulfillmentLatency = &days
				}

				updates = append(updates, update)
			}

			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			submission, err := client.Feeds().UpdateStock(cmd.Context(), updates, options.submitOptions())
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return printSubmission(cmd, submission)
		},
	}

	cmd.Flags().IntVar(&latency, "latency", 0, "fulfillment latency in days")

	return cmd
}

func newFeedsPriceCommand(options *feedOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "price SKU=PRICE...",
		Short: "Update standard prices",
		Long:  "Submit a pricing feed setting the standard price of each SKU",
		Args:  requireArgs(1, "SKU=PRICE pair"),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := splitPairs(args, ErrInvalidPriceArg)
			if err != nil {
				return err
			}

			updates := make([]mws.PriceUpdate, 0, len(pairs))
			for _, pair := range pairs {
				updates = append(updates, mws.PriceUpdate{SKU: pair[0], StandardPrice: pair[1]})
			}

			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			submission, err := client.Feeds().UpdatePrice(cmd.Context(), updates, options.submitOptions())
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return printSubmission(cmd, submission)
		},
	}
}

func newFeedsDeleteCommand(options *feedOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete SKU...",
		Short: "Delete products",
		Long:  "Submit a product feed deleting each SKU from the catalogue",
		Args:  requireArgs(1, "SKU"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			submission, err := client.Feeds().DeleteProductsBySKU(cmd.Context(), args, options.submitOptions())
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return printSubmission(cmd, submission)
		},
	}
}

func newFeedsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [SUBMISSION_ID...]",
		Short: "List feed submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			infos, err := client.Feeds().SubmissionList(cmd.Context(), args)
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), infos, nodeTable(infos, feedColumns, feedPaths))
		},
	}
}

func newFeedsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status SUBMISSION_ID...",
		Short: "Show feed processing statuses",
		Long:  "Show the processing status of each submission; any number of ids may be given",
		Args:  requireArgs(1, "submission id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			statuses, err := client.Feeds().Statuses(cmd.Context(), args)
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			rows := make([]FeedStatus, 0, len(statuses))
			for id, status := range statuses {
				rows = append(rows, FeedStatus{SubmissionID: id, Status: status})
			}

			sort.Slice(rows, func(i, j int) bool { return rows[i].SubmissionID < rows[j].SubmissionID })

			return writeOutput(cmd.OutOrStdout(), rows, func(table *tablewriter.Table) {
				table.Header("Submission ID", "Status")

				for _, row := range rows {
					_ = table.Append(row.SubmissionID, row.Status)
				}
			})
		},
	}
}

func newFeedsResultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "result SUBMISSION_ID",
		Short: "Show the processing report of a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			report, err := client.Feeds().SubmissionResult(cmd.Context(), args[0])
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), report, treeTable(report))
		},
	}
}
