package mws

import (
	"context"
	"net/http"
	"time"
)

// OrdersClient covers the Orders section.
type OrdersClient interface {
	List(ctx context.Context, request *ListOrdersRequest) ([]*Node, error)
	ListPage(ctx context.Context, request *ListOrdersRequest) (*OrdersPage, error)
	ListByNextToken(ctx context.Context, nextToken string) (*OrdersPage, error)
	Get(ctx context.Context, amazonOrderID string) (*Node, error)
	ListItems(ctx context.Context, amazonOrderID string) ([]*Node, error)
}

// ProductsClient covers the Products section.
type ProductsClient interface {
	CompetitivePricingForASIN(ctx context.Context, asins []string) (map[string]*Node, error)
	CompetitivePricingForSKU(ctx context.Context, skus []string) (map[string]*SKUPricing, error)
	MyPriceForSKU(ctx context.Context, skus []string, condition string) (map[string]*OfferLookup, error)
	MyPriceForASIN(ctx context.Context, asins []string, condition string) (map[string]*OfferLookup, error)
	LowestOfferListingsForASIN(ctx context.Context, asins []string, condition string) (map[string]*OfferLookup, error)
	LowestPricedOffersForASIN(ctx context.Context, asin, condition string) (*Node, error)
	CategoriesForSKU(ctx context.Context, sku string) (*Node, error)
	CategoriesForASIN(ctx context.Context, asin string) (*Node, error)
	MatchingProductForID(ctx context.Context, ids []string, idType string) (*MatchingProducts, error)
	MatchingProductForIDAll(ctx context.Context, ids []string, idType string) (*MatchingProducts, error)
	ListMatchingProducts(ctx context.Context, query, queryContextID string) (*Node, error)
	MapBarcodesToASIN(ctx context.Context, barcodes []string) (map[string]string, error)
}

// ReportsClient covers the Reports section.
type ReportsClient interface {
	Request(ctx context.Context, request *ReportRequest) (*Node, error)
	List(ctx context.Context, options *ReportListOptions) ([]*Node, error)
	ListRequests(ctx context.Context, options *ReportListOptions) ([]*Node, error)
	RequestStatus(ctx context.Context, reportRequestID string) (*Node, error)
	Get(ctx context.Context, reportID string) (*Report, error)
}

// FeedsClient covers the Feeds section.
type FeedsClient interface {
	Submit(ctx context.Context, feedType string, payload []byte, options *SubmitFeedOptions) (*FeedSubmission, error)
	SubmitMessages(ctx context.Context, feedType, messageType string, messages []*Node, options *SubmitFeedOptions) (*FeedSubmission, error)
	SubmissionList(ctx context.Context, submissionIDs []string) ([]*Node, error)
	SubmissionResult(ctx context.Context, submissionID string) (*Node, error)
	Statuses(ctx context.Context, submissionIDs []string) (map[string]string, error)
	DeleteProductsBySKU(ctx context.Context, skus []string, options *SubmitFeedOptions) (*FeedSubmission, error)
	UpdateStock(ctx context.Context, updates []StockUpdate, options *SubmitFeedOptions) (*FeedSubmission, error)
	UpdatePrice(ctx context.Context, updates []PriceUpdate, options *SubmitFeedOptions) (*FeedSubmission, error)
	PostProducts(ctx context.Context, products []*Product, options *SubmitFeedOptions) (*FeedSubmission, error)
}

// SellersClient covers the Sellers section.
type SellersClient interface {
	ListMarketplaceParticipations(ctx context.Context) (*Node, error)
}

// RecommendationsClient covers the Recommendations section.
type RecommendationsClient interface {
	List(ctx context.Context, category string) (*Node, error)
}

// InventoryClient covers the FulfillmentInventory section.
type InventoryClient interface {
	ListSupply(ctx context.Context, skus []string) ([]*Node, error)
}

// Caller issues one generic operation through the request pipeline.
type Caller interface {
	Call(ctx context.Context, operation string, params *Params, options *CallOptions) (*Result, error)
}

// Client is the full service surface.
type Client interface {
	Caller

	Orders() OrdersClient
	Products() ProductsClient
	Reports() ReportsClient
	Feeds() FeedsClient
	Sellers() SellersClient
	Recommendations() RecommendationsClient
	Inventory() InventoryClient

	// ValidateCredentials probes the service. A rejection of the credentials
	// yields (false, nil); only failures that say nothing about the
	// credentials (transport, outage) are returned as errors.
	ValidateCredentials(ctx context.Context) (bool, error)
	// RequireValidCredentials is the raising form of ValidateCredentials.
	RequireValidCredentials(ctx context.Context) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Credentials identify the seller account.
type Credentials struct {
	SellerID      string `json:"seller_id"             yaml:"seller_id"             mapstructure:"seller_id"`
	MarketplaceID string `json:"marketplace_id"        yaml:"marketplace_id"        mapstructure:"marketplace_id"`
	AccessKeyID   string `json:"access_key_id"         yaml:"access_key_id"         mapstructure:"access_key_id"`
	SecretKey     string `json:"secret_key"            yaml:"secret_key"            mapstructure:"secret_key"`
	AuthToken     string `json:"auth_token,omitempty"  yaml:"auth_token,omitempty"  mapstructure:"auth_token"`
}

// Config represents client configuration for building a Client.
//
// # Credentials
//
// SellerID, MarketplaceID, AccessKeyID and SecretKey are required. AuthToken
// is only needed when calling on behalf of another seller. Set
// SkipRequiredCheck to construct a client with partial credentials, for
// example in a proxy that fills them in per tenant. The marketplace id
// selects the regional host, so it must be a known id unless Endpoint is set.
// Set VerifyCredentials to probe the service once during construction.
//
// # Retries
//
// Throttled calls are retried by the request pipeline according to the
// operation's recovery interval, at most three attempts. TransportRetryMax
// separately enables retries of connection failures at the HTTP layer; it is
// zero by default.
type Config struct {
	Credentials

	// SkipRequiredCheck disables the required-credentials check.
	SkipRequiredCheck bool
	// VerifyCredentials makes construction fail with ErrInvalidCredentials
	// when the service rejects the credentials.
	VerifyCredentials bool

	// Endpoint overrides the base URL derived from the marketplace
	// (e.g. "http://127.0.0.1:8080" in tests).
	Endpoint string

	// ApplicationName and ApplicationVersion form the x-amazon-user-agent header.
	ApplicationName    string
	ApplicationVersion string

	// HTTPTimeout bounds a single HTTP exchange. Zero uses the default.
	HTTPTimeout time.Duration
	// TransportRetryMax is the number of retries of connection failures.
	TransportRetryMax int
	// RetryWaitMin and RetryWaitMax bound the transport backoff.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// HTTPClient replaces the underlying *http.Client.
	HTTPClient *http.Client

	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger.
	Logger Logger

	// Registry replaces the built-in operation table.
	Registry Registry

	// ReportCache stores downloaded report bodies, which never change for a
	// given report id. Nil disables caching.
	ReportCache Cache
	// ReportCacheTTL is the lifetime of cached reports. Zero uses the default.
	ReportCacheTTL time.Duration

	// Metrics records per-operation Prometheus metrics when set.
	Metrics *MetricsCollector

	// Interceptors run around every HTTP attempt.
	Interceptors *InterceptorChain
}
