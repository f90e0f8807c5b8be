package mws

import "time"

// Order statuses accepted by ListOrders.
const (
	OrderStatusPendingAvailability = "PendingAvailability"
	OrderStatusPending             = "Pending"
	OrderStatusUnshipped           = "Unshipped"
	OrderStatusPartiallyShipped    = "PartiallyShipped"
	OrderStatusShipped             = "Shipped"
	OrderStatusInvoiceUnconfirmed  = "InvoiceUnconfirmed"
	OrderStatusCanceled            = "Canceled"
	OrderStatusUnfulfillable       = "Unfulfillable"
)

// Fulfillment channels.
const (
	FulfillmentChannelMerchant = "MFN"
	FulfillmentChannelAmazon   = "AFN"
)

// Feed types used by the feed helpers.
const (
	FeedTypeProductData           = "_POST_PRODUCT_DATA_"
	FeedTypeInventoryAvailability = "_POST_INVENTORY_AVAILABILITY_DATA_"
	FeedTypeProductPricing        = "_POST_PRODUCT_PRICING_DATA_"
	FeedTypeFlatFileListings      = "_POST_FLAT_FILE_LISTINGS_DATA_"
)

// Identifier types for GetMatchingProductForId.
const (
	IDTypeASIN      = "ASIN"
	IDTypeGCID      = "GCID"
	IDTypeSellerSKU = "SellerSKU"
	IDTypeUPC       = "UPC"
	IDTypeEAN       = "EAN"
	IDTypeISBN      = "ISBN"
	IDTypeJAN       = "JAN"
)

// ListOrdersRequest filters ListOrders. Zero values select the defaults:
// orders created in the last day, Unshipped and PartiallyShipped, fulfilled by
// the merchant, in the configured marketplace.
type ListOrdersRequest struct {
	CreatedAfter        time.Time
	CreatedBefore       time.Time
	Statuses            []string
	FulfillmentChannels []string
	// AllMarketplaces queries every marketplace the seller participates in.
	AllMarketplaces bool
	// Marketplaces restricts the query; ignored when AllMarketplaces is set.
	Marketplaces []string
}

// OrdersPage is one page of ListOrders.
type OrdersPage struct {
	Orders    []*Node `json:"orders"               yaml:"orders"`
	NextToken string  `json:"next_token,omitempty" yaml:"next_token,omitempty"`
}

// SKUPricing is the competitive price of a SKU and its sales rankings.
type SKUPricing struct {
	Price *Node `json:"price" yaml:"price"`
	// Rank holds the SalesRankings element; it may list several categories.
	Rank *Node `json:"rank" yaml:"rank"`
}

// OfferLookup is the outcome of an offer lookup for one identifier. Found is
// false when the service reported an error for that identifier.
type OfferLookup struct {
	Found  bool    `json:"found"  yaml:"found"`
	Offers []*Node `json:"offers" yaml:"offers"`
}

// MatchedProduct is the flattened view of a GetMatchingProductForId result.
type MatchedProduct struct {
	ASIN              string             `json:"asin"                         yaml:"asin"`
	ParentASIN        string             `json:"parent_asin,omitempty"        yaml:"parent_asin,omitempty"`
	Parentage         string             `json:"parentage,omitempty"          yaml:"parentage,omitempty"`
	Language          string             `json:"language,omitempty"           yaml:"language,omitempty"`
	Attributes        map[string]string  `json:"attributes"                   yaml:"attributes"`
	Features          []string           `json:"features,omitempty"           yaml:"features,omitempty"`
	PackageDimensions map[string]float64 `json:"package_dimensions,omitempty" yaml:"package_dimensions,omitempty"`
	ItemDimensions    map[string]float64 `json:"item_dimensions,omitempty"    yaml:"item_dimensions,omitempty"`
	ListPrice         *Node              `json:"list_price,omitempty"         yaml:"list_price,omitempty"`
	SmallImage        string             `json:"small_image,omitempty"        yaml:"small_image,omitempty"`
	MediumImage       string             `json:"medium_image,omitempty"       yaml:"medium_image,omitempty"`
	LargeImage        string             `json:"large_image,omitempty"        yaml:"large_image,omitempty"`
	SalesRanks        []*Node            `json:"sales_ranks,omitempty"        yaml:"sales_ranks,omitempty"`
}

// MatchingProducts groups matches by the identifier that was looked up.
type MatchingProducts struct {
	Found    map[string][]*MatchedProduct `json:"found"     yaml:"found"`
	NotFound []string                     `json:"not_found" yaml:"not_found"`
}

// ReportRequest asks the service to generate a report.
type ReportRequest struct {
	ReportType string
	StartDate  time.Time
	EndDate    time.Time
	// Marketplaces defaults to the configured marketplace.
	Marketplaces []string
}

// ReportListOptions filters GetReportList and GetReportRequestList.
type ReportListOptions struct {
	ReportTypes []string
	// RequestIDs is limited to 100 entries.
	RequestIDs []string
}

// Report is a downloaded report. Tab-separated reports are decoded into rows
// keyed by header; XML reports are returned as a tree.
type Report struct {
	ID          string              `json:"id"                 yaml:"id"`
	ContentType string              `json:"content_type"       yaml:"content_type"`
	Header      []string            `json:"header,omitempty"   yaml:"header,omitempty"`
	Rows        []map[string]string `json:"rows,omitempty"     yaml:"rows,omitempty"`
	Document    *Node               `json:"document,omitempty" yaml:"document,omitempty"`
	Cached      bool                `json:"cached"             yaml:"cached"`
}

// SubmitFeedOptions tune SubmitFeed.
type SubmitFeedOptions struct {
	PurgeAndReplace bool
	// Marketplaces defaults to the configured marketplace.
	Marketplaces []string
	// DryRun encodes the feed and returns it without sending.
	DryRun bool
}

// FeedSubmission is the service acknowledgement of a submitted feed.
type FeedSubmission struct {
	Info    *Node  `json:"info,omitempty"    yaml:"info,omitempty"`
	Payload []byte `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// StockUpdate is one inventory message. Exactly one of Quantity or Available
// should be set; FulfillmentLatency is optional.
type StockUpdate struct {
	SKU                string
	Quantity           *int
	Available          *bool
	FulfillmentLatency *int
}

// SalePrice is a time-boxed promotional price.
type SalePrice struct {
	Price string
	Start time.Time
	End   time.Time
}

// PriceUpdate is one pricing message. Prices are XSD decimal strings.
type PriceUpdate struct {
	SKU           string
	StandardPrice string
	Sale          *SalePrice
}

// Product is one row of the flat-file listings feed.
type Product struct {
	SKU                    string
	Price                  string
	Quantity               int
	ProductID              string
	ProductIDType          string
	ConditionType          string
	ConditionNote          string
	ASINHint               string
	Title                  string
	ProductTaxCode         string
	OperationType          string
	SalePrice              string
	SaleStartDate          string
	SaleEndDate            string
	LeadtimeToShip         string
	LaunchDate             string
	IsGiftwrapAvailable    string
	IsGiftMessageAvailable string
	FulfillmentCenterID    string
	MainOfferImage         string
	OfferImages            [5]string
}
