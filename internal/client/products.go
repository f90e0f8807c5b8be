package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/internal/feed"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

const (
	statusSuccess        = "Success"
	defaultItemCondition = "New"
	mediumImageMarker    = "._SL75_"
	smallImageMarker     = "._SL50_"
)

// ProductsClient implements mws.ProductsClient.
type ProductsClient struct {
	caller mws.Caller
	creds  mws.Credentials
}

// NewProductsClient creates a new products client.
func NewProductsClient(caller mws.Caller, creds mws.Credentials) *ProductsClient {
	return &ProductsClient{
		caller: caller,
		creds:  creds,
	}
}

func (c *ProductsClient) params() *mws.Params {
	return mws.NewParams().Set("MarketplaceId", c.creds.MarketplaceID)
}

// results runs a batched lookup and returns one node per identifier result.
func (c *ProductsClient) results(ctx context.Context, operation string, params *mws.Params) ([]*mws.Node, error) {
	result, err := c.caller.Call(ctx, operation, params, nil)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers add the operation context
	}

	return result.Items, nil
}

// CompetitivePricingForASIN implements mws.ProductsClient.CompetitivePricingForASIN.
// ASINs without a competitive price are left out.
func (c *ProductsClient) CompetitivePricingForASIN(ctx context.Context, asins []string) (map[string]*mws.Node, error) {
	err := checkLimit("GetCompetitivePricingForASIN", len(asins), constants.MaxPricingIdentifiers)
	if err != nil {
		return nil, err
	}

	items, err := c.results(ctx, "GetCompetitivePricingForASIN", c.params().WithList("ASINList.ASIN", asins...))
	if err != nil {
		return nil, fmt.Errorf("getting competitive pricing for ASINs: %w", err)
	}

	prices := make(map[string]*mws.Node)

	for _, item := range items {
		price := competitivePrice(item)
		if price == nil {
			continue
		}

		prices[item.Value("Product", "Identifiers", "MarketplaceASIN", "ASIN")] = price
	}

	return prices, nil
}

// CompetitivePricingForSKU implements mws.ProductsClient.CompetitivePricingForSKU.
func (c *ProductsClient) CompetitivePricingForSKU(ctx context.Context, skus []string) (map[string]*mws.SKUPricing, error) {
	err := checkLimit("GetCompetitivePricingForSKU", len(skus), constants.MaxPricingIdentifiers)
	if err != nil {
		return nil, err
	}

	items, err := c.results(ctx, "GetCompetitivePricingForSKU", c.params().WithList("SellerSKUList.SellerSKU", skus...))
	if err != nil {
		return nil, fmt.Errorf("getting competitive pricing for SKUs: %w", err)
	}

	prices := make(map[string]*mws.SKUPricing)

	for _, item := range items {
		price := competitivePrice(item)
		if price == nil {
			continue
		}

		sku := item.Value("Product", "Identifiers", "SKUIdentifier", "SellerSKU")
		prices[sku] = &mws.SKUPricing{
			Price: price,
			Rank:  item.Get("Product", "SalesRankings"),
		}
	}

	return prices, nil
}

func competitivePrice(item *mws.Node) *mws.Node {
	prices := mws.AsList(item.Get("Product", "CompetitivePricing", "CompetitivePrices", "CompetitivePrice"))
	if len(prices) == 0 {
		return nil
	}

	return prices[0].Get("Price")
}

// MyPriceForSKU implements mws.ProductsClient.MyPriceForSKU.
func (c *ProductsClient) MyPriceForSKU(ctx context.Context, skus []string, condition string) (map[string]*mws.OfferLookup, error) {
	return c.myPrice(ctx, "GetMyPriceForSKU", "SellerSKUList.SellerSKU", "SellerSKU", skus, condition)
}

// MyPriceForASIN implements mws.ProductsClient.MyPriceForASIN.
func (c *ProductsClient) MyPriceForASIN(ctx context.Context, asins []string, condition string) (map[string]*mws.OfferLookup, error) {
	return c.myPrice(ctx, "GetMyPriceForASIN", "ASINList.ASIN", "ASIN", asins, condition)
}

func (c *ProductsClient) myPrice(
	ctx context.Context, operation, listPrefix, idAttr string, ids []string, condition string,
) (map[string]*mws.OfferLookup, error) {
	err := checkLimit(operation, len(ids), constants.MaxPricingIdentifiers)
	if err != nil {
		return nil, err
	}

	params := c.params().WithList(listPrefix, ids...)
	if condition != "" {
		params.Set("ItemCondition", condition)
	}

	items, err := c.results(ctx, operation, params)
	if err != nil {
		return nil, fmt.Errorf("getting my price: %w", err)
	}

	lookups := make(map[string]*mws.OfferLookup, len(items))

	for _, item := range items {
		lookup := &mws.OfferLookup{Offers: []*mws.Node{}}

		if item.Attr("status") == statusSuccess {
			lookup.Found = true
			lookup.Offers = listOf(item.Get("Product", "Offers", "Offer"))
		}

		lookups[item.Attr(idAttr)] = lookup
	}

	return lookups, nil
}

// LowestOfferListingsForASIN implements mws.ProductsClient.LowestOfferListingsForASIN.
func (c *ProductsClient) LowestOfferListingsForASIN(ctx context.Context, asins []string, condition string) (map[string]*mws.OfferLookup, error) {
	err := checkLimit("GetLowestOfferListingsForASIN", len(asins), constants.MaxPricingIdentifiers)
	if err != nil {
		return nil, err
	}

	params := c.params().WithList("ASINList.ASIN", asins...)
	if condition != "" {
		params.Set("ItemCondition", condition)
	}

	items, err := c.results(ctx, "GetLowestOfferListingsForASIN", params)
	if err != nil {
		return nil, fmt.Errorf("getting lowest offer listings: %w", err)
	}

	lookups := make(map[string]*mws.OfferLookup, len(items))

	for _, item := range items {
		asin := item.Value("Product", "Identifiers", "MarketplaceASIN", "ASIN")
		if asin == "" {
			asin = item.Attr("ASIN")
		}

		offers := listOf(item.Get("Product", "LowestOfferListings", "LowestOfferListing"))
		lookups[asin] = &mws.OfferLookup{Found: len(offers) > 0, Offers: offers}
	}

	return lookups, nil
}

// LowestPricedOffersForASIN implements mws.ProductsClient.LowestPricedOffersForASIN.
// An empty condition asks for new items.
func (c *ProductsClient) LowestPricedOffersForASIN(ctx context.Context, asin, condition string) (*mws.Node, error) {
	if condition == "" {
		condition = defaultItemCondition
	}

	params := mws.NewParams().
		Set("ASIN", asin).
		Set("MarketplaceId", c.creds.MarketplaceID).
		Set("ItemCondition", condition)

	payload, err := call(ctx, c.caller, "GetLowestPricedOffersForASIN", params)
	if err != nil {
		return nil, fmt.Errorf("getting lowest priced offers for %s: %w", asin, err)
	}

	return payload, nil
}

// CategoriesForSKU implements mws.ProductsClient.CategoriesForSKU.
func (c *ProductsClient) CategoriesForSKU(ctx context.Context, sku string) (*mws.Node, error) {
	return c.categories(ctx, "GetProductCategoriesForSKU", "SellerSKU", sku)
}

// CategoriesForASIN implements mws.ProductsClient.CategoriesForASIN.
func (c *ProductsClient) CategoriesForASIN(ctx context.Context, asin string) (*mws.Node, error) {
	return c.categories(ctx, "GetProductCategoriesForASIN", "ASIN", asin)
}

func (c *ProductsClient) categories(ctx context.Context, operation, key, id string) (*mws.Node, error) {
	payload, err := call(ctx, c.caller, operation, c.params().Set(key, id))
	if err != nil {
		return nil, fmt.Errorf("getting categories for %s: %w", id, err)
	}

	self := payload.Get("Self")
	if self == nil {
		return nil, &mws.Error{
			Kind:      mws.KindNotFound,
			Message:   "no categories for " + strconv.Quote(id),
			Operation: operation,
		}
	}

	return self, nil
}

// MatchingProductForID implements mws.ProductsClient.MatchingProductForID.
// Duplicate ids are dropped before the limit is checked.
func (c *ProductsClient) MatchingProductForID(ctx context.Context, ids []string, idType string) (*mws.MatchingProducts, error) {
	ids = dedupe(ids)

	err := checkLimit("GetMatchingProductForId", len(ids), constants.MaxMatchingIdentifiers)
	if err != nil {
		return nil, err
	}

	if idType == "" {
		idType = mws.IDTypeASIN
	}

	params := c.params().Set("IdType", idType).WithList("IdList.Id", ids...)

	items, err := c.results(ctx, "GetMatchingProductForId", params)
	if err != nil {
		return nil, fmt.Errorf("getting matching products: %w", err)
	}

	matches := &mws.MatchingProducts{
		Found:    make(map[string][]*mws.MatchedProduct),
		NotFound: []string{},
	}

	for _, item := range items {
		id := item.Attr("Id")

		if item.Attr("status") != statusSuccess {
			matches.NotFound = append(matches.NotFound, id)

			continue
		}

		for _, product := range listOf(item.Get("Products", "Product")) {
			matches.Found[id] = append(matches.Found[id], matchedProduct(product))
		}
	}

	return matches, nil
}

// MatchingProductForIDAll implements mws.ProductsClient.MatchingProductForIDAll
// by splitting ids into batches the service accepts.
func (c *ProductsClient) MatchingProductForIDAll(ctx context.Context, ids []string, idType string) (*mws.MatchingProducts, error) {
	all := &mws.MatchingProducts{
		Found:    make(map[string][]*mws.MatchedProduct),
		NotFound: []string{},
	}

	for _, batch := range chunk(dedupe(ids), constants.MaxMatchingIdentifiers) {
		matches, err := c.MatchingProductForID(ctx, batch, idType)
		if err != nil {
			return nil, err
		}

		for id, products := range matches.Found {
			all.Found[id] = append(all.Found[id], products...)
		}

		all.NotFound = append(all.NotFound, matches.NotFound...)
	}

	return all, nil
}

func matchedProduct(product *mws.Node) *mws.MatchedProduct {
	match := &mws.MatchedProduct{
		ASIN:       product.Value("Identifiers", "MarketplaceASIN", "ASIN"),
		Attributes: make(map[string]string),
	}

	var attrs *mws.Node
	if sets := mws.AsList(product.Get("AttributeSets", "ItemAttributes")); len(sets) > 0 {
		attrs = sets[0]
	}

	match.Language = attrs.Attr("lang")

	for _, key := range attrs.Keys() {
		if child := attrs.Get(key); child.Kind == mws.KindScalar {
			match.Attributes[key] = child.Text
		}
	}

	for _, feature := range mws.AsList(attrs.Get("Feature")) {
		match.Features = append(match.Features, feature.String())
	}

	match.PackageDimensions = dimensions(attrs.Get("PackageDimensions"))
	match.ItemDimensions = dimensions(attrs.Get("ItemDimensions"))
	match.ListPrice = attrs.Get("ListPrice")

	if image := attrs.Value("SmallImage", "URL"); image != "" {
		match.MediumImage = image
		match.SmallImage = strings.ReplaceAll(image, mediumImageMarker, smallImageMarker)
		match.LargeImage = strings.ReplaceAll(image, mediumImageMarker, "")
	}

	if parent := product.Value("Relationships", "VariationParent", "Identifiers", "MarketplaceASIN", "ASIN"); parent != "" {
		match.ParentASIN = parent
		match.Parentage = "child"
	}

	if product.Has("Relationships", "VariationChild") {
		match.Parentage = "parent"
	}

	if ranks := listOf(product.Get("SalesRankings", "SalesRank")); len(ranks) > 0 {
		match.SalesRanks = ranks
	}

	return match
}

// dimensions reads the numeric children of a dimensions element, such as
// Height, Length, Width and Weight.
func dimensions(node *mws.Node) map[string]float64 {
	if node.Len() == 0 {
		return nil
	}

	out := make(map[string]float64, node.Len())

	for _, key := range node.Keys() {
		value, err := strconv.ParseFloat(strings.TrimSpace(node.Value(key)), 64)
		if err == nil {
			out[key] = value
		}
	}

	return out
}

// ListMatchingProducts implements mws.ProductsClient.ListMatchingProducts.
func (c *ProductsClient) ListMatchingProducts(ctx context.Context, query, queryContextID string) (*mws.Node, error) {
	if strings.TrimSpace(query) == "" {
		return nil, mws.ErrMissingQuery
	}

	params := c.params().Set("Query", query)
	if queryContextID != "" {
		params.Set("QueryContextId", queryContextID)
	}

	payload, err := call(ctx, c.caller, "ListMatchingProducts", params)
	if err != nil {
		return nil, fmt.Errorf("listing matching products: %w", err)
	}

	if payload == nil {
		return mws.NewMapping(), nil
	}

	return payload, nil
}

// MapBarcodesToASIN implements mws.ProductsClient.MapBarcodesToASIN.
// Barcodes without a match are absent from the map.
func (c *ProductsClient) MapBarcodesToASIN(ctx context.Context, barcodes []string) (map[string]string, error) {
	var types []string

	byType := make(map[string][]string)

	for _, barcode := range barcodes {
		idType, err := feed.RecognizeBarcodeType(barcode)
		if err != nil {
			return nil, err //nolint:wrapcheck // already names the barcode
		}

		if _, ok := byType[idType]; !ok {
			types = append(types, idType)
		}

		byType[idType] = append(byType[idType], barcode)
	}

	asins := make(map[string]string, len(barcodes))

	for _, idType := range types {
		matches, err := c.MatchingProductForIDAll(ctx, byType[idType], idType)
		if err != nil {
			return nil, fmt.Errorf("mapping %s barcodes: %w", idType, err)
		}

		for barcode, products := range matches.Found {
			if len(products) > 0 && products[0].ASIN != "" {
				asins[barcode] = products[0].ASIN
			}
		}
	}

	return asins, nil
}

// listOf is AsList that treats an empty element as no entries.
func listOf(node *mws.Node) []*mws.Node {
	if node == nil || (node.Kind == mws.KindMapping && node.Len() == 0 && node.Text == "") {
		return []*mws.Node{}
	}

	return mws.AsList(node)
}
