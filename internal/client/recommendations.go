package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// RecommendationsClient implements mws.RecommendationsClient.
type RecommendationsClient struct {
	caller mws.Caller
	creds  mws.Credentials
}

// NewRecommendationsClient creates a new recommendations client.
func NewRecommendationsClient(caller mws.Caller, creds mws.Credentials) *RecommendationsClient {
	return &RecommendationsClient{
		caller: caller,
		creds:  creds,
	}
}

// List implements mws.RecommendationsClient.List. An empty category lists
// every category.
func (c *RecommendationsClient) List(ctx context.Context, category string) (*mws.Node, error) {
	params := mws.NewParams().Set("MarketplaceId", c.creds.MarketplaceID)
	if category != "" {
		params.Set("RecommendationCategory", category)
	}

	payload, err := call(ctx, c.caller, "ListRecommendations", params)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}

	return payload, nil
}
