package mws

import (
	"fmt"
	"sort"
)

// Marketplace identifiers.
const (
	MarketplaceSpain     = "A1RKKUPIHCS9HS"
	MarketplaceUK        = "A1F83G8C2ARO7P"
	MarketplaceFrance    = "A13V1IB3VIYZZH"
	MarketplaceGermany   = "A1PA6795UKMFR9"
	MarketplaceItaly     = "APJ6JRA9NG5V4"
	MarketplaceBrazil    = "A2Q3Y263D00KWC"
	MarketplaceIndia     = "A21TJRUUN4KGV"
	MarketplaceChina     = "AAHKV2X7AFYLW"
	MarketplaceJapan     = "A1VC38T7YXB528"
	MarketplaceAustralia = "A39IBJ37TRP1C6"
	MarketplaceCanada    = "A2EUQ1WTGCTBG2"
	MarketplaceUS        = "ATVPDKIKX0DER"
	MarketplaceMexico    = "A1AM78C64UM0Y8"
)

var marketplaceHosts = map[string]string{
	MarketplaceCanada:    "mws.amazonservices.ca",
	MarketplaceUS:        "mws.amazonservices.com",
	MarketplaceMexico:    "mws.amazonservices.com.mx",
	MarketplaceGermany:   "mws-eu.amazonservices.com",
	MarketplaceSpain:     "mws-eu.amazonservices.com",
	MarketplaceFrance:    "mws-eu.amazonservices.com",
	MarketplaceIndia:     "mws.amazonservices.in",
	MarketplaceItaly:     "mws-eu.amazonservices.com",
	MarketplaceUK:        "mws-eu.amazonservices.com",
	MarketplaceJapan:     "mws.amazonservices.jp",
	MarketplaceChina:     "mws.amazonservices.com.cn",
	MarketplaceAustralia: "mws.amazonservices.com.au",
	MarketplaceBrazil:    "mws.amazonservices.com",
}

// Regions groups marketplace ids by selling region.
var Regions = map[string][]string{
	"North America": {MarketplaceCanada, MarketplaceUS, MarketplaceMexico},
	"Brazil":        {MarketplaceBrazil},
	"Europe":        {MarketplaceGermany, MarketplaceSpain, MarketplaceFrance, MarketplaceItaly, MarketplaceUK},
	"India":         {MarketplaceIndia},
	"China":         {MarketplaceChina},
	"Japan":         {MarketplaceJapan},
	"Australia":     {MarketplaceAustralia},
}

// MarketplaceHost returns the regional host serving a marketplace.
func MarketplaceHost(marketplaceID string) (string, error) {
	host, ok := marketplaceHosts[marketplaceID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMarketplace, marketplaceID)
	}

	return host, nil
}

// MarketplaceIDs returns every known marketplace id, sorted.
func MarketplaceIDs() []string {
	ids := make([]string, 0, len(marketplaceHosts))
	for id := range marketplaceHosts {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
