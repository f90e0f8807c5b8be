package feed

import (
	"strconv"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

const defaultCurrency = "DEFAULT"

// DeleteMessages builds one Product/Delete message per SKU.
func DeleteMessages(skus []string) []*mws.Node {
	messages := make([]*mws.Node, len(skus))

	for i, sku := range skus {
		messages[i] = mws.NewMapping().
			Set("OperationType", mws.NewScalar("Delete")).
			Set("Product", mws.NewMapping().Set("SKU", mws.NewScalar(sku)))
	}

	return messages
}

// StockMessages builds Inventory/Update messages. Available wins over
// Quantity when both are set.
func StockMessages(updates []mws.StockUpdate) []*mws.Node {
	messages := make([]*mws.Node, len(updates))

	for i, update := range updates {
		inventory := mws.NewMapping().Set("SKU", mws.NewScalar(update.SKU))

		switch {
		case update.Available != nil:
			inventory.Set("Available", mws.NewScalar(strconv.FormatBool(*update.Available)))
		case update.Quantity != nil:
			inventory.Set("Quantity", mws.NewScalar(strconv.Itoa(*update.Quantity)))
		}

		if update.FulfillmentLatency != nil {
			inventory.Set("FulfillmentLatency", mws.NewScalar(strconv.Itoa(*update.FulfillmentLatency)))
		}

		messages[i] = mws.NewMapping().
			Set("OperationType", mws.NewScalar("Update")).
			Set("Inventory", inventory)
	}

	return messages
}

// PriceMessages builds Price messages, with an optional sale window.
func PriceMessages(updates []mws.PriceUpdate) []*mws.Node {
	messages := make([]*mws.Node, len(updates))

	for i, update := range updates {
		price := mws.NewMapping().
			Set("SKU", mws.NewScalar(update.SKU)).
			Set("StandardPrice", amount(update.StandardPrice))

		if update.Sale != nil {
			price.Set("Sale", mws.NewMapping().
				Set("StartDate", mws.NewScalar(update.Sale.Start.Format(constants.FeedDateFormat))).
				Set("EndDate", mws.NewScalar(update.Sale.End.Format(constants.FeedDateFormat))).
				Set("SalePrice", amount(update.Sale.Price)))
		}

		messages[i] = mws.NewMapping().Set("Price", price)
	}

	return messages
}

func amount(value string) *mws.Node {
	node := mws.NewScalar(value)
	node.Attrs = map[string]string{"currency": defaultCurrency}

	return node
}
