package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// SellersClient implements mws.SellersClient.
type SellersClient struct {
	caller mws.Caller
}

// NewSellersClient creates a new sellers client.
func NewSellersClient(caller mws.Caller) *SellersClient {
	return &SellersClient{caller: caller}
}

// ListMarketplaceParticipations implements mws.SellersClient.ListMarketplaceParticipations.
func (c *SellersClient) ListMarketplaceParticipations(ctx context.Context) (*mws.Node, error) {
	payload, err := call(ctx, c.caller, "ListMarketplaceParticipations", mws.NewParams())
	if err != nil {
		return nil, fmt.Errorf("listing marketplace participations: %w", err)
	}

	return payload, nil
}
