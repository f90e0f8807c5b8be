package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// OrdersClient implements mws.OrdersClient.
type OrdersClient struct {
	caller mws.Caller
	creds  mws.Credentials
	now    func() time.Time
}

// NewOrdersClient creates a new orders client.
func NewOrdersClient(caller mws.Caller, creds mws.Credentials) *OrdersClient {
	return &OrdersClient{
		caller: caller,
		creds:  creds,
		now:    time.Now,
	}
}

// listParams builds the ListOrders query, filling in the defaults.
func (c *OrdersClient) listParams(request *mws.ListOrdersRequest) *mws.Params {
	if request == nil {
		request = &mws.ListOrdersRequest{}
	}

	createdAfter := request.CreatedAfter
	if createdAfter.IsZero() {
		createdAfter = c.now().Add(-constants.DefaultOrdersLookback)
	}

	params := mws.NewParams().Set("CreatedAfter", formatTime(createdAfter))

	if !request.CreatedBefore.IsZero() {
		params.Set("CreatedBefore", formatTime(request.CreatedBefore))
	}

	statuses := request.Statuses
	if len(statuses) == 0 {
		statuses = []string{mws.OrderStatusUnshipped, mws.OrderStatusPartiallyShipped}
	}

	params.WithList("OrderStatus.Status", statuses...)

	switch {
	case request.AllMarketplaces:
		params.WithList("MarketplaceId.Id", mws.MarketplaceIDs()...)
	case len(request.Marketplaces) > 0:
		params.WithList("MarketplaceId.Id", request.Marketplaces...)
	}

	channels := request.FulfillmentChannels
	if len(channels) == 0 {
		channels = []string{mws.FulfillmentChannelMerchant}
	}

	params.WithList("FulfillmentChannel.Channel", channels...)

	return params
}

// List implements mws.OrdersClient.List. Every page is fetched.
func (c *OrdersClient) List(ctx context.Context, request *mws.ListOrdersRequest) ([]*mws.Node, error) {
	result, err := c.caller.Call(ctx, "ListOrders", c.listParams(request), &mws.CallOptions{AutoPaginate: true})
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	return nonNil(result.Items), nil
}

// ListPage implements mws.OrdersClient.ListPage.
func (c *OrdersClient) ListPage(ctx context.Context, request *mws.ListOrdersRequest) (*mws.OrdersPage, error) {
	result, err := c.caller.Call(ctx, "ListOrders", c.listParams(request), nil)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	return &mws.OrdersPage{Orders: nonNil(result.Items), NextToken: result.NextToken}, nil
}

// ListByNextToken implements mws.OrdersClient.ListByNextToken.
func (c *OrdersClient) ListByNextToken(ctx context.Context, nextToken string) (*mws.OrdersPage, error) {
	params := mws.NewParams().Set("NextToken", nextToken)

	result, err := c.caller.Call(ctx, "ListOrdersByNextToken", params, nil)
	if err != nil {
		return nil, fmt.Errorf("listing orders by next token: %w", err)
	}

	return &mws.OrdersPage{Orders: nonNil(result.Items), NextToken: result.NextToken}, nil
}

// Get implements mws.OrdersClient.Get. A missing order yields an
// mws.ErrNotFound error.
func (c *OrdersClient) Get(ctx context.Context, amazonOrderID string) (*mws.Node, error) {
	payload, err := call(ctx, c.caller, "GetOrder", mws.NewParams().Set("AmazonOrderId.Id.1", amazonOrderID))
	if err != nil {
		return nil, fmt.Errorf("getting order %s: %w", amazonOrderID, err)
	}

	orders := mws.AsList(payload.Get("Orders", "Order"))
	if len(orders) == 0 || orders[0] == nil {
		return nil, &mws.Error{
			Kind:      mws.KindNotFound,
			Message:   "order " + strconv.Quote(amazonOrderID) + " not found",
			Operation: "GetOrder",
		}
	}

	return orders[0], nil
}

// ListItems implements mws.OrdersClient.ListItems. Every page is fetched.
func (c *OrdersClient) ListItems(ctx context.Context, amazonOrderID string) ([]*mws.Node, error) {
	params := mws.NewParams().Set("AmazonOrderId", amazonOrderID)

	result, err := c.caller.Call(ctx, "ListOrderItems", params, &mws.CallOptions{AutoPaginate: true})
	if err != nil {
		return nil, fmt.Errorf("listing items of order %s: %w", amazonOrderID, err)
	}

	return nonNil(result.Items), nil
}

func nonNil(items []*mws.Node) []*mws.Node {
	if items == nil {
		return []*mws.Node{}
	}

	return items
}
