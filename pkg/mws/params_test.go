package mws_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

func TestParams(t *testing.T) {
	t.Parallel()

	params := mws.NewParams().
		Set("Action", "ListOrders").
		WithList("MarketplaceId.Id", "A", "B").
		With("CreatedAfter", "2020-01-01T00:00:00Z")

	assert.Equal(t, []string{"Action", "MarketplaceId.Id.1", "MarketplaceId.Id.2", "CreatedAfter"}, params.Keys())
	assert.Equal(t, "B", params.Get("MarketplaceId.Id.2"))
	assert.True(t, params.HasPrefix("MarketplaceId.Id."))
	assert.False(t, params.HasPrefix("OrderStatus."))

	params.Set("Action", "ListOrdersByNextToken")
	assert.Equal(t, 4, params.Len())
	assert.Equal(t, "Action", params.Keys()[0])

	clone := params.Clone()
	params.Del("CreatedAfter")
	params.Del("Missing")

	assert.False(t, params.Has("CreatedAfter"))
	assert.True(t, clone.Has("CreatedAfter"))
	assert.Equal(t, 3, params.Len())

	values := clone.ToValues()
	assert.Equal(t, "ListOrdersByNextToken", values.Get("Action"))
	assert.Len(t, values, 4)
}

func TestParams_NilSafe(t *testing.T) {
	t.Parallel()

	var params *mws.Params

	assert.Empty(t, params.Get("x"))
	assert.False(t, params.Has("x"))
	assert.False(t, params.HasPrefix("x"))
	assert.Zero(t, params.Len())
	assert.Nil(t, params.Keys())
	assert.Empty(t, params.ToValues())
	assert.Zero(t, params.Clone().Len())
	params.Del("x")
}

func TestParamsFrom(t *testing.T) {
	t.Parallel()

	params := mws.ParamsFrom(map[string]string{"SellerSKU": "A", "MarketplaceId": "B"})

	assert.Equal(t, 2, params.Len())
	assert.Equal(t, "A", params.Get("SellerSKU"))
}

func TestResult_Payload(t *testing.T) {
	t.Parallel()

	result := &mws.Result{
		Operation: "GetOrder",
		Response: mws.NewMapping().
			Set("GetOrderResult", mws.NewMapping().Set("Orders", mws.NewMapping())).
			Set("ResponseMetadata", mws.NewMapping().Set("RequestId", mws.NewScalar("r-1"))),
		Body: []byte("raw"),
	}

	assert.True(t, result.Payload().Has("Orders"))
	assert.Equal(t, "raw", result.Text())

	var empty *mws.Result
	assert.Nil(t, empty.Payload())
	assert.Empty(t, empty.Text())
	assert.Nil(t, (&mws.Result{Operation: "GetReport"}).Payload())
}

func TestOperationDescriptor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action       string
		continuation bool
		base         string
	}{
		{"ListOrders", false, "ListOrders"},
		{"ListOrdersByNextToken", true, "ListOrders"},
		{"ByNextToken", false, "ByNextToken"},
	}

	for _, tt := range tests {
		descriptor := &mws.OperationDescriptor{Action: tt.action}

		assert.Equal(t, tt.continuation, descriptor.IsContinuation(), tt.action)
		assert.Equal(t, tt.base, descriptor.BaseName(), tt.action)
		assert.Equal(t, tt.action+"Result", descriptor.ResultKey(), tt.action)
	}
}
