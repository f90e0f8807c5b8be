package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// InventoryClient implements mws.InventoryClient.
type InventoryClient struct {
	caller mws.Caller
	creds  mws.Credentials
}

// NewInventoryClient creates a new fulfillment inventory client.
func NewInventoryClient(caller mws.Caller, creds mws.Credentials) *InventoryClient {
	return &InventoryClient{
		caller: caller,
		creds:  creds,
	}
}

// ListSupply implements mws.InventoryClient.ListSupply.
func (c *InventoryClient) ListSupply(ctx context.Context, skus []string) ([]*mws.Node, error) {
	err := checkLimit("ListInventorySupply", len(skus), constants.MaxInventorySKUs)
	if err != nil {
		return nil, err
	}

	params := mws.NewParams().
		Set("MarketplaceId", c.creds.MarketplaceID).
		WithList("SellerSkus.member", skus...)

	payload, err := call(ctx, c.caller, "ListInventorySupply", params)
	if err != nil {
		return nil, fmt.Errorf("listing inventory supply: %w", err)
	}

	return listOf(payload.Get("InventorySupplyList", "member")), nil
}
