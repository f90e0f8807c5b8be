package endpoints_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/mws/internal/endpoints"
	"github.com/fivetwenty-io/mws/pkg/mws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestRegistry_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		operation     string
		wantAction    string
		wantPath      string
		wantVersion   string
		wantContainer string
		wantItem      string
		wantRecovery  time.Duration
		wantUpload    bool
	}{
		{
			name:          "orders with pagination hints",
			operation:     "ListOrders",
			wantAction:    "ListOrders",
			wantPath:      "/Orders/2013-09-01",
			wantVersion:   "2013-09-01",
			wantContainer: "Orders",
			wantItem:      "Order",
			wantRecovery:  60 * time.Second,
		},
		{
			name:          "continuation keeps base metadata",
			operation:     "ListOrderItemsByNextToken",
			wantAction:    "ListOrderItemsByNextToken",
			wantPath:      "/Orders/2013-09-01",
			wantVersion:   "2013-09-01",
			wantContainer: "OrderItems",
			wantItem:      "OrderItem",
			wantRecovery:  5 * time.Second,
		},
		{
			name:         "feed list",
			operation:    "GetFeedSubmissionList",
			wantAction:   "GetFeedSubmissionList",
			wantPath:     "/",
			wantVersion:  "2009-01-01",
			wantItem:     "FeedSubmissionInfo",
			wantRecovery: 45 * time.Second,
		},
		{
			name:        "upload",
			operation:   "SubmitFeed",
			wantAction:  "SubmitFeed",
			wantPath:    "/",
			wantVersion: "2009-01-01",
			wantUpload:  true,
		},
		{
			name:        "inventory",
			operation:   "ListInventorySupply",
			wantAction:  "ListInventorySupply",
			wantPath:    "/FulfillmentInventory",
			wantVersion: "2010-10-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			desc, err := endpoints.Default().Resolve(tt.operation)
			require.NoError(t, err)

			assert.Equal(t, tt.operation, desc.Name)
			assert.Equal(t, tt.wantAction, desc.Action)
			assert.Equal(t, http.MethodPost, desc.Method)
			assert.Equal(t, tt.wantPath, desc.Path)
			assert.Equal(t, tt.wantVersion, desc.Version)
			assert.Equal(t, tt.wantContainer, desc.ResultContainerKey)
			assert.Equal(t, tt.wantItem, desc.ResultItemKey)
			assert.Equal(t, tt.wantRecovery, desc.RecoveryInterval)
			assert.Equal(t, tt.wantUpload, desc.Upload)
		})
	}
}

func TestRegistry_ResolveContinuation(t *testing.T) {
	t.Parallel()

	desc, err := endpoints.Default().Resolve("ListOrdersByNextToken")
	require.NoError(t, err)

	assert.True(t, desc.IsContinuation())
	assert.Equal(t, "ListOrders", desc.BaseName())
	assert.Equal(t, "ListOrdersByNextTokenResult", desc.ResultKey())

	base, err := endpoints.Default().Resolve("ListOrders")
	require.NoError(t, err)
	assert.False(t, base.IsContinuation())
	assert.Equal(t, "ListOrders", base.Action, "resolving a continuation must not mutate the table")
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"DoesNotExist", "DoesNotExistByNextToken", "ByNextToken", ""} {
		_, err := endpoints.Default().Resolve(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, mws.ErrUnknownOperation)

		var mwsErr *mws.Error
		require.True(t, errors.As(err, &mwsErr))
		assert.Equal(t, name, mwsErr.Operation)
	}
}

func TestRegistry_New(t *testing.T) {
	t.Parallel()

	registry := endpoints.New(mws.OperationDescriptor{
		Name:             "Synthetic",
		Path:             "/Synthetic/2020-01-01",
		Version:          "2020-01-01",
		ResultItemKey:    "Item",
		RecoveryInterval: time.Second,
	})

	desc, err := registry.Resolve("Synthetic")
	require.NoError(t, err)
	assert.Equal(t, "Synthetic", desc.Action)
	assert.Equal(t, http.MethodPost, desc.Method)

	assert.Equal(t, []string{"Synthetic"}, registry.Names())

	_, err = registry.Resolve("ListOrders")
	require.ErrorIs(t, err, mws.ErrUnknownOperation)
}

func TestRegistry_Names(t *testing.T) {
	t.Parallel()

	names := endpoints.Default().Names()
	assert.Len(t, names, 23)
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "GetLowestPricedOffersForASIN")
	assert.NotContains(t, names, "ListOrdersByNextToken")
}
