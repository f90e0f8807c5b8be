package feed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// Flat-file template identification, written as the first line.
const (
	TemplateType    = "TemplateType=Offer"
	TemplateVersion = "Version=2014.0703"
	maxSKULength    = 40
)

// FlatFileHeader lists the columns of the offer template in order.
var FlatFileHeader = []string{
	"sku",
	"price",
	"quantity",
	"product-id",
	"product-id-type",
	"condition-type",
	"condition-note",
	"ASIN-hint",
	"title",
	"product-tax-code",
	"operation-type",
	"sale-price",
	"sale-start-date",
	"sale-end-date",
	"leadtime-to-ship",
	"launch-date",
	"is-giftwrap-available",
	"is-gift-message-available",
	"fulfillment-center-id",
	"main-offer-image",
	"offer-image1",
	"offer-image2",
	"offer-image3",
	"offer-image4",
	"offer-image5",
}

var productIDTypes = map[string]bool{
	mws.IDTypeASIN: true,
	mws.IDTypeUPC:  true,
	mws.IDTypeEAN:  true,
	mws.IDTypeISBN: true,
}

var conditionTypes = map[string]bool{
	"New":                   true,
	"Refurbished":           true,
	"UsedLikeNew":           true,
	"UsedVeryGood":          true,
	"UsedGood":              true,
	"UsedAcceptable":        true,
	"CollectibleLikeNew":    true,
	"CollectibleVeryGood":   true,
	"CollectibleGood":       true,
	"CollectibleAcceptable": true,
	"Club":                  true,
}

var ErrNoProducts = errors.New("no products to post")

// ValidateProduct checks one listing row. row is 1-based and only used in the
// returned error.
func ValidateProduct(row int, product *mws.Product) *mws.ValidationError {
	problems := make(map[string]string)

	switch {
	case product.SKU == "":
		problems["sku"] = "is required"
	case utf8.RuneCountInString(product.SKU) > maxSKULength:
		problems["sku"] = fmt.Sprintf("must be at most %d characters", maxSKULength)
	}

	if product.Price == "" {
		problems["price"] = "is required"
	} else if !isAmount(product.Price) {
		problems["price"] = "must be a non-negative number"
	}

	if product.SalePrice != "" && !isAmount(product.SalePrice) {
		problems["sale-price"] = "must be a non-negative number"
	}

	if product.Quantity < 0 {
		problems["quantity"] = "must not be negative"
	}

	if product.ProductID != "" && !productIDTypes[product.ProductIDType] {
		problems["product-id-type"] = "must be one of ASIN, UPC, EAN, ISBN"
	}

	if product.ConditionType != "" && !conditionTypes[product.ConditionType] {
		problems["condition-type"] = "is not a known condition"
	}

	if len(problems) == 0 {
		return nil
	}

	return &mws.ValidationError{Row: row, Errors: problems}
}

func isAmount(value string) bool {
	amount, err := strconv.ParseFloat(value, 64)

	return err == nil && amount >= 0
}

// EncodeProducts renders products as the ISO-8859-1 tab-separated listings
// file. Every row is validated first; all failures are returned together.
func EncodeProducts(products []*mws.Product) ([]byte, error) {
	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	var invalid []error

	for i, product := range products {
		if failure := ValidateProduct(i+1, product); failure != nil {
			invalid = append(invalid, failure)
		}
	}

	if len(invalid) > 0 {
		return nil, errors.Join(invalid...)
	}

	var buf bytes.Buffer

	latin1 := latin1Writer(&buf)
	writer := csv.NewWriter(latin1)
	writer.Comma = '\t'

	records := make([][]string, 0, len(products)+3)
	records = append(records, []string{TemplateType, TemplateVersion}, FlatFileHeader, FlatFileHeader)

	for _, product := range products {
		records = append(records, productRecord(product))
	}

	err := writer.WriteAll(records)
	if err != nil {
		return nil, fmt.Errorf("writing listings file: %w", err)
	}

	err = closeWriter(latin1)
	if err != nil {
		return nil, fmt.Errorf("writing listings file: %w", err)
	}

	return buf.Bytes(), nil
}

func productRecord(product *mws.Product) []string {
	record := []string{
		product.SKU,
		product.Price,
		strconv.Itoa(product.Quantity),
		product.ProductID,
		product.ProductIDType,
		product.ConditionType,
		product.ConditionNote,
		product.ASINHint,
		product.Title,
		product.ProductTaxCode,
		product.OperationType,
		product.SalePrice,
		product.SaleStartDate,
		product.SaleEndDate,
		product.LeadtimeToShip,
		product.LaunchDate,
		product.IsGiftwrapAvailable,
		product.IsGiftMessageAvailable,
		product.FulfillmentCenterID,
		product.MainOfferImage,
	}

	return append(record, product.OfferImages[:]...)
}
