package commands

import (
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// NewProductsCommand creates the products command group.
func NewProductsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Look up catalogue products",
		Long:    "Match identifiers to catalogue products, search the catalogue and map barcodes to ASINs",
	}

	cmd.AddCommand(newProductsMatchCommand())
	cmd.AddCommand(newProductsSearchCommand())
	cmd.AddCommand(newProductsBarcodesCommand())

	return cmd
}

func newProductsMatchCommand() *cobra.Command {
	var idType string

	cmd := &cobra.Command{
		Use:   "match ID...",
		Short: "Match identifiers to products",
		Long:  "Look up products by ASIN, SellerSKU, UPC, EAN, ISBN or JAN; any number of ids may be given",
		Args:  requireArgs(1, "identifier"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			matches, err := client.Products().MatchingProductForIDAll(cmd.Context(), args, idType)
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			ids := make([]string, 0, len(matches.Found))
			for id := range matches.Found {
				ids = append(ids, id)
			}

			sort.Strings(ids)

			return writeOutput(cmd.OutOrStdout(), matches, func(table *tablewriter.Table) {
				table.Header("ID", "ASIN", "Title", "Brand", "Parent ASIN")

				for _, id := range ids {
					for _, product := range matches.Found[id] {
						_ = table.Append(id, product.ASIN, valueOrNA(product.Attributes["Title"]),
							valueOrNA(product.Attributes["Brand"]), valueOrNA(product.ParentASIN))
					}
				}

				for _, id := range matches.NotFound {
					_ = table.Append(id, NotAvailable, NotAvailable, NotAvailable, NotAvailable)
				}
			})
		},
	}

	cmd.Flags().StringVar(&idType, "type", mws.IDTypeASIN, "identifier type (ASIN, SellerSKU, UPC, EAN, ISBN, JAN)")

	return cmd
}

func newProductsSearchCommand() *cobra.Command {
	var contextID string

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the catalogue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			products, err := client.Products().ListMatchingProducts(cmd.Context(), args[0], contextID)
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), products, treeTable(products))
		},
	}

	cmd.Flags().StringVar(&contextID, "context", "", "query context (product category), e.g. Books")

	return cmd
}

func newProductsBarcodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "barcodes BARCODE...",
		Short: "Map barcodes to ASINs",
		Long:  "Recognise each barcode as UPC, EAN, ISBN or JAN and look up the ASIN it belongs to",
		Args:  requireArgs(1, "barcode"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			asins, err := client.Products().MapBarcodesToASIN(cmd.Context(), args)
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			return writeOutput(cmd.OutOrStdout(), asins, func(table *tablewriter.Table) {
				table.Header("Barcode", "ASIN")

				for _, barcode := range args {
					_ = table.Append(barcode, valueOrNA(asins[barcode]))
				}
			})
		},
	}
}
