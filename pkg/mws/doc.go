// Package mws provides types, interfaces, and helpers for working with the
// Amazon Marketplace Web Service XML RPC API.
//
// # Overview
//
// The mws package defines the normalized response tree (Node), the request
// parameter set (Params), the operation table types (OperationDescriptor,
// Registry), the error taxonomy (Error, ErrorKind), and the interfaces of the
// per-section clients (OrdersClient, ProductsClient, ReportsClient,
// FeedsClient and friends). A concrete implementation is provided by the
// mwsclient package, which wires signing, transport, retries and pagination.
// Most consumers should import mwsclient to construct a client and then use
// the section clients exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/mws/pkg/mws"
//	  "github.com/fivetwenty-io/mws/pkg/mwsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := mwsclient.NewWithCredentials(ctx, mws.Credentials{
//	    SellerID:      "A1SELLER",
//	    MarketplaceID: mws.MarketplaceUS,
//	    AccessKeyID:   "AKID",
//	    SecretKey:     "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  orders, err := cli.Orders().List(ctx, &mws.ListOrdersRequest{})
//	  if err != nil { log.Fatal(err) }
//	  _ = orders
//	}
//
// # Response trees
//
// Responses are normalized into Node values. A repeated element may arrive
// as a single mapping or as a sequence, so read list-like fields through
// AsList:
//
//	for _, item := range mws.AsList(order.Get("OrderItems", "OrderItem")) {
//	  fmt.Println(item.Value("SellerSKU"))
//	}
//
// # Errors
//
// Every failed call returns an *Error. Branch on its kind with errors.Is
// against the Err* sentinels, or with the IsThrottled, IsNotFound and
// IsAccessDenied helpers:
//
//	if mws.IsThrottled(err) { /* back off */ }
//
// # Caching and metrics
//
// Downloaded reports can be cached through any Cache implementation:
// MemoryCache, NATSKVCache for sharing between processes, or a CacheChain of
// both. MetricsCollector exports Prometheus counters for requests, throttling,
// retries, pages and cache activity.
package mws
