package commands

import (
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

var (
	orderColumns = []string{"Order ID", "Purchase Date", "Status", "Channel", "Total", "Currency"}
	orderPaths   = [][]string{
		{"AmazonOrderId"},
		{"PurchaseDate"},
		{"OrderStatus"},
		{"FulfillmentChannel"},
		{"OrderTotal", "Amount"},
		{"OrderTotal", "CurrencyCode"},
	}
	orderItemColumns = []string{"Item ID", "SKU", "ASIN", "Quantity", "Price"}
	orderItemPaths   = [][]string{
		{"OrderItemId"},
		{"SellerSKU"},
		{"ASIN"},
		{"QuantityOrdered"},
		{"ItemPrice", "Amount"},
	}
)

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Query orders",
		Long:    "List orders, fetch a single order and list its items",
	}

	cmd.AddCommand(newOrdersListCommand())
	cmd.AddCommand(newOrdersGetCommand())
	cmd.AddCommand(newOrdersItemsCommand())

	return cmd
}

func newOrdersListCommand() *cobra.Command {
	var (
		createdAfter    string
		createdBefore   string
		statuses        []string
		channels        []string
		marketplaces    []string
		allMarketplaces bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Long:  "List orders created in a window, following every result page",
		RunE: func(cmd *cobra.Command, args []string) error {
			after, err := parseDate(createdAfter)
			if err != nil {
				return err
			}

			before, err := parseDate(createdBefore)
			if err != nil {
				return err
			}

			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			orders, err := client.Orders().List(cmd.Context(), &mws.ListOrdersRequest{
				CreatedAfter:        after,
				CreatedBefore:       before,
				Statuses:            statuses,
				FulfillmentChannels: channels,
				Marketplaces:        marketplaces,
				AllMarketplaces:     allMarketplaces,
			})
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), orders, nodeTable(orders, orderColumns, orderPaths))
		},
	}

	cmd.Flags().StringVar(&createdAfter, "created-after", "", "only orders created after this date (default: one day ago)")
	cmd.Flags().StringVar(&createdBefore, "created-before", "", "only orders created before this date")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "order statuses to include")
	cmd.Flags().StringSliceVar(&channels, "channel", nil, "fulfillment channels to include (AFN, MFN)")
	cmd.Flags().StringSliceVar(&marketplaces, "marketplace", nil, "marketplaces to query (default: the configured one)")
	cmd.Flags().BoolVar(&allMarketplaces, "all-marketplaces", false, "query every marketplace the seller participates in")

	return cmd
}

func newOrdersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ORDER_ID",
		Short: "Get an order",
		Long:  "Display a single order by its Amazon order id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			order, err := client.Orders().Get(cmd.Context(), args[0])
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), order, treeTable(order))
		},
	}
}

func newOrdersItemsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "items ORDER_ID",
		Short: "List order items",
		Long:  "List the items of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			items, err := client.Orders().ListItems(cmd.Context(), args[0])
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), items, nodeTable(items, orderItemColumns, orderItemPaths))
		},
	}
}
