package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/internal/endpoints"
	"github.com/fivetwenty-io/mws/internal/http"
	"github.com/fivetwenty-io/mws/internal/pipeline"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// Static errors for err113 compliance.
var (
	ErrEndpointRequired = errors.New("endpoint is required")
)

// validationOrderID is a deliberately invalid order id used to check the
// credentials. A service that answers "Invalid AmazonOrderId" has accepted
// the signature.
const (
	validationOrderID = "validate"
	validationMessage = "Invalid AmazonOrderId: " + validationOrderID
)

// Client implements the mws.Client interface.
type Client struct {
	pipeline *pipeline.Pipeline
	creds    mws.Credentials
	logger   mws.Logger

	// Resource clients
	orders          *OrdersClient
	products        *ProductsClient
	reports         *ReportsClient
	feeds           *FeedsClient
	sellers         *SellersClient
	recommendations *RecommendationsClient
	inventory       *InventoryClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *mws.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.TransportRetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.TransportRetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// createInterceptors extends a copy of the caller's chain with the metrics interceptors.
func createInterceptors(config *mws.Config) *mws.InterceptorChain {
	if config.Metrics == nil {
		return config.Interceptors
	}

	return config.Interceptors.Clone().
		AddRequestInterceptor(mws.MetricsRequestInterceptor(config.Metrics)).
		AddResponseInterceptor(mws.MetricsResponseInterceptor(config.Metrics))
}

// New creates a client for config.Endpoint. The endpoint must already be
// resolved; see mwsclient.New for the public constructor.
func New(config *mws.Config) (*Client, error) {
	if config == nil {
		return nil, mws.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, ErrEndpointRequired
	}

	registry := config.Registry
	if registry == nil {
		registry = endpoints.Default()
	}

	p, err := pipeline.New(&pipeline.Config{
		Credentials:        config.Credentials,
		BaseURL:            config.Endpoint,
		Registry:           registry,
		Transport:          http.NewClient(createHTTPClientOptions(config)...),
		ApplicationName:    config.ApplicationName,
		ApplicationVersion: config.ApplicationVersion,
		Logger:             config.Logger,
		Interceptors:       createInterceptors(config),
		Metrics:            config.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("creating request pipeline: %w", err)
	}

	client := &Client{
		pipeline: p,
		creds:    config.Credentials,
		logger:   config.Logger,
	}

	client.initializeResourceClients(config)

	return client, nil
}

// initializeResourceClients initializes all resource clients.
func (c *Client) initializeResourceClients(config *mws.Config) {
	ttl := config.ReportCacheTTL
	if ttl <= 0 {
		ttl = mws.DefaultReportCacheTTL
	}

	c.orders = NewOrdersClient(c.pipeline, c.creds)
	c.products = NewProductsClient(c.pipeline, c.creds)
	c.reports = NewReportsClient(c.pipeline, c.creds, &ReportCacheConfig{
		Cache:   mws.NewCacheManager(config.ReportCache, config.Logger),
		TTL:     ttl,
		Metrics: config.Metrics,
	})
	c.feeds = NewFeedsClient(c.pipeline, c.creds)
	c.sellers = NewSellersClient(c.pipeline)
	c.recommendations = NewRecommendationsClient(c.pipeline, c.creds)
	c.inventory = NewInventoryClient(c.pipeline, c.creds)
}

// Call implements mws.Caller.Call.
func (c *Client) Call(ctx context.Context, operation string, params *mws.Params, options *mws.CallOptions) (*mws.Result, error) {
	result, err := c.pipeline.Call(ctx, operation, params, options)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", operation, err)
	}

	return result, nil
}

// ValidateCredentials implements mws.Client.ValidateCredentials.
func (c *Client) ValidateCredentials(ctx context.Context) (bool, error) {
	_, err := c.pipeline.Call(ctx, "ListOrderItems",
		mws.NewParams().Set("AmazonOrderId", validationOrderID), nil)
	if err == nil {
		return true, nil
	}

	var mwsErr *mws.Error
	if !errors.As(err, &mwsErr) {
		return false, fmt.Errorf("validating credentials: %w", err)
	}

	switch {
	case mwsErr.Message == validationMessage:
		return true, nil
	case mwsErr.Kind == mws.KindTransport, mwsErr.StatusCode >= 500:
		return false, fmt.Errorf("validating credentials: %w", err)
	default:
		if c.logger != nil {
			c.logger.Warn("Credentials rejected", map[string]interface{}{
				"kind":    string(mwsErr.Kind),
				"message": mwsErr.Message,
			})
		}

		return false, nil
	}
}

// RequireValidCredentials implements mws.Client.RequireValidCredentials.
func (c *Client) RequireValidCredentials(ctx context.Context) error {
	valid, err := c.ValidateCredentials(ctx)
	if err != nil {
		return err
	}

	if !valid {
		return mws.ErrInvalidCredentials
	}

	return nil
}

// Resource client accessors

// Orders implements mws.Client.Orders.
func (c *Client) Orders() mws.OrdersClient {
	return c.orders
}

// Products implements mws.Client.Products.
func (c *Client) Products() mws.ProductsClient {
	return c.products
}

// Reports implements mws.Client.Reports.
func (c *Client) Reports() mws.ReportsClient {
	return c.reports
}

// Feeds implements mws.Client.Feeds.
func (c *Client) Feeds() mws.FeedsClient {
	return c.feeds
}

// Sellers implements mws.Client.Sellers.
func (c *Client) Sellers() mws.SellersClient {
	return c.sellers
}

// Recommendations implements mws.Client.Recommendations.
func (c *Client) Recommendations() mws.RecommendationsClient {
	return c.recommendations
}

// Inventory implements mws.Client.Inventory.
func (c *Client) Inventory() mws.InventoryClient {
	return c.inventory
}
