package client_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/mws/internal/client"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

func TestSellersClient_ListMarketplaceParticipations(t *testing.T) {
	t.Parallel()

	fake := NewFakeMWS(t).OnXML("ListMarketplaceParticipations", ResponseXML("ListMarketplaceParticipations", `
<ListParticipations>
  <Participation><MarketplaceId>ATVPDKIKX0DER</MarketplaceId><SellerId>A1SELLER</SellerId></Participation>
</ListParticipations>
<ListMarketplaces>
  <Marketplace><MarketplaceId>ATVPDKIKX0DER</MarketplaceId><Name>Amazon.com</Name></Marketplace>
  <Marketplace><MarketplaceId>A2EUQ1WTGCTBG2</MarketplaceId><Name>Amazon.ca</Name></Marketplace>
</ListMarketplaces>`))
	client := NewTestClient(t, fake)

	participations, err := client.Sellers().ListMarketplaceParticipations(context.Background())
	require.NoError(t, err)

	marketplaces := mws.AsList(participations.Get("ListMarketplaces", "Marketplace"))
	require.Len(t, marketplaces, 2)
	assert.Equal(t, "Amazon.ca", marketplaces[1].Value("Name"))
	assert.Equal(t, "/Sellers/2011-07-01", fake.LastRequest(t).Path)
}

func TestRecommendationsClient_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category string
	}{
		{name: "all categories"},
		{name: "one category", category: "Pricing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := NewFakeMWS(t).OnXML("ListRecommendations", ResponseXML("ListRecommendations",
				`<PricingRecommendations><PricingRecommendation><RecommendationId>1</RecommendationId></PricingRecommendation></PricingRecommendations>`))

			recommendations, err := NewTestClient(t, fake).Recommendations().List(context.Background(), tt.category)
			require.NoError(t, err)
			assert.Equal(t, "1", recommendations.Value("PricingRecommendations", "PricingRecommendation", "RecommendationId"))

			request := fake.LastRequest(t)
			assert.Equal(t, "/Recommendations/2013-04-01", request.Path)
			assert.Equal(t, "ATVPDKIKX0DER", request.Query.Get("MarketplaceId"))
			assert.Equal(t, tt.category, request.Query.Get("RecommendationCategory"))
		})
	}
}

func TestInventoryClient_ListSupply(t *testing.T) {
	t.Parallel()

	t.Run("lists members", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeMWS(t).OnXML("ListInventorySupply", ResponseXML("ListInventorySupply", `
<MarketplaceId>ATVPDKIKX0DER</MarketplaceId>
<InventorySupplyList>
  <member><SellerSKU>SKU-1</SellerSKU><InStockSupplyQuantity>5</InStockSupplyQuantity></member>
  <member><SellerSKU>SKU-2</SellerSKU><InStockSupplyQuantity>0</InStockSupplyQuantity></member>
</InventorySupplyList>`))

		supply, err := NewTestClient(t, fake).Inventory().ListSupply(context.Background(), []string{"SKU-1", "SKU-2"})
		require.NoError(t, err)
		require.Len(t, supply, 2)
		assert.Equal(t, "5", supply[0].Value("InStockSupplyQuantity"))

		request := fake.LastRequest(t)
		assert.Equal(t, "/FulfillmentInventory", request.Path)
		assert.Equal(t, "2010-10-01", request.Query.Get("Version"))
		assert.Equal(t, "SKU-2", request.Query.Get("SellerSkus.member.2"))
	})

	t.Run("single member", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeMWS(t).OnXML("ListInventorySupply", ResponseXML("ListInventorySupply",
			`<InventorySupplyList><member><SellerSKU>SKU-1</SellerSKU></member></InventorySupplyList>`))

		supply, err := NewTestClient(t, fake).Inventory().ListSupply(context.Background(), []string{"SKU-1"})
		require.NoError(t, err)
		require.Len(t, supply, 1)
		assert.Equal(t, "SKU-1", supply[0].Value("SellerSKU"))
	})

	t.Run("too many SKUs", func(t *testing.T) {
		t.Parallel()

		skus := make([]string, 51)
		for i := range skus {
			skus[i] = fmt.Sprintf("SKU-%d", i)
		}

		fake := NewFakeMWS(t)

		_, err := NewTestClient(t, fake).Inventory().ListSupply(context.Background(), skus)
		require.ErrorIs(t, err, mws.ErrTooManyIdentifiers)
		assert.Empty(t, fake.Requests())
	})
}
