// Package endpoints holds the table of remote operations and resolves
// operation names, including continuation variants, to descriptors.
package endpoints

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// Service paths and versions.
const (
	pathRoot         = "/"
	pathOrders       = "/Orders/2013-09-01"
	pathProducts     = "/Products/2011-10-01"
	pathSellers      = "/Sellers/2011-07-01"
	pathRecommend    = "/Recommendations/2013-04-01"
	pathInventory    = "/FulfillmentInventory"
	versionFeeds     = "2009-01-01"
	versionOrders    = "2013-09-01"
	versionProducts  = "2011-10-01"
	versionSellers   = "2011-07-01"
	versionRecommend = "2013-04-01"
	versionInventory = "2010-10-01"
)

// Registry is an immutable operation table.
type Registry struct {
	descriptors map[string]mws.OperationDescriptor
}

// New builds a registry from descriptors. Method defaults to POST and Action
// to Name.
func New(descriptors ...mws.OperationDescriptor) *Registry {
	table := make(map[string]mws.OperationDescriptor, len(descriptors))

	for _, desc := range descriptors {
		if desc.Method == "" {
			desc.Method = http.MethodPost
		}

		if desc.Action == "" {
			desc.Action = desc.Name
		}

		table[desc.Name] = desc
	}

	return &Registry{descriptors: table}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the built-in operation table.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New(builtin()...)
	})

	return defaultRegistry
}

// Resolve returns a copy of the descriptor for name. A name carrying the
// continuation suffix resolves to its base operation with the suffix kept on
// Name and Action.
func (r *Registry) Resolve(name string) (*mws.OperationDescriptor, error) {
	if desc, ok := r.descriptors[name]; ok {
		return &desc, nil
	}

	base, found := strings.CutSuffix(name, mws.ContinuationSuffix)
	if found && base != "" {
		if desc, ok := r.descriptors[base]; ok {
			desc.Name = name
			desc.Action += mws.ContinuationSuffix

			return &desc, nil
		}
	}

	return nil, &mws.Error{
		Kind:      mws.KindUnknownOperation,
		Message:   fmt.Sprintf("call to undefined operation %s", name),
		Operation: name,
	}
}

// Names returns the registered operation names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func products(name string) mws.OperationDescriptor {
	return mws.OperationDescriptor{Name: name, Path: pathProducts, Version: versionProducts}
}

func feeds(name string) mws.OperationDescriptor {
	return mws.OperationDescriptor{Name: name, Path: pathRoot, Version: versionFeeds}
}

func builtin() []mws.OperationDescriptor {
	matching := products("GetMatchingProductForId")
	matching.RecoveryInterval = 2 * time.Second

	feedList := feeds("GetFeedSubmissionList")
	feedList.ResultItemKey = "FeedSubmissionInfo"
	feedList.RecoveryInterval = 45 * time.Second

	reportList := feeds("GetReportList")
	reportList.ResultItemKey = "ReportInfo"

	reportRequestList := feeds("GetReportRequestList")
	reportRequestList.ResultItemKey = "ReportRequestInfo"

	submitFeed := feeds("SubmitFeed")
	submitFeed.Upload = true

	return []mws.OperationDescriptor{
		{Name: "ListRecommendations", Path: pathRecommend, Version: versionRecommend},
		{Name: "ListMarketplaceParticipations", Path: pathSellers, Version: versionSellers},
		products("GetMyPriceForSKU"),
		products("GetMyPriceForASIN"),
		products("GetProductCategoriesForSKU"),
		products("GetProductCategoriesForASIN"),
		products("GetCompetitivePricingForSKU"),
		products("GetCompetitivePricingForASIN"),
		products("GetLowestOfferListingsForASIN"),
		products("GetLowestPricedOffersForASIN"),
		products("ListMatchingProducts"),
		matching,
		feeds("GetFeedSubmissionResult"),
		feedList,
		reportList,
		reportRequestList,
		feeds("GetReport"),
		feeds("RequestReport"),
		submitFeed,
		{Name: "ListInventorySupply", Path: pathInventory, Version: versionInventory},
		{
			Name: "ListOrders", Path: pathOrders, Version: versionOrders,
			ResultContainerKey: "Orders", ResultItemKey: "Order",
			RecoveryInterval: 60 * time.Second,
		},
		{
			Name: "ListOrderItems", Path: pathOrders, Version: versionOrders,
			ResultContainerKey: "OrderItems", ResultItemKey: "OrderItem",
			RecoveryInterval: 5 * time.Second,
		},
		{Name: "GetOrder", Path: pathOrders, Version: versionOrders},
	}
}
