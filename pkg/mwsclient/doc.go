// Package mwsclient is the entry point for constructing a client of the
// Amazon Marketplace Web Service that implements the mws.Client interface.
//
// It checks the credentials, derives the regional host from the marketplace
// and wires the signed request pipeline, the HTTP transport and the optional
// report cache and metrics defined in the mws package.
//
// Quick start
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
//
//	  cli, err := mwsclient.New(ctx, &mws.Config{
//	    Credentials: mws.Credentials{
//	      SellerID:      "A1SELLER",
//	      MarketplaceID: mws.MarketplaceUS,
//	      AccessKeyID:   "AKIA...",
//	      SecretKey:     "...",
//	    },
//	    VerifyCredentials: true,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  orders, err := cli.Orders().List(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = orders
//
//	  // Any registered operation can be called directly.
//	  res, err := cli.Call(ctx, "GetReportList", mws.NewParams().Set("MaxCount", "10"), nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = res.Items
//	}
//
// # Endpoints
//
// Config.Endpoint replaces the marketplace host, for example to point the
// client at a local stub. A bare host gets the https scheme.
package mwsclient
