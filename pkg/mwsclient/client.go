// Package mwsclient provides the main entry point for creating MWS clients
package mwsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/mws/internal/client"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// New creates a new MWS client. The base URL is derived from the marketplace
// unless config.Endpoint overrides it. config is not modified.
func New(ctx context.Context, config *mws.Config) (mws.Client, error) {
	if config == nil {
		return nil, mws.ErrConfigRequired
	}

	resolved := *config

	if !resolved.SkipRequiredCheck {
		err := checkRequired(&resolved.Credentials)
		if err != nil {
			return nil, err
		}
	}

	endpoint, err := resolveEndpoint(&resolved)
	if err != nil {
		return nil, err
	}

	resolved.Endpoint = endpoint

	// Use the internal client implementation
	c, err := client.New(&resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	if resolved.VerifyCredentials {
		err = c.RequireValidCredentials(ctx)
		if err != nil {
			return nil, fmt.Errorf("verifying credentials: %w", err)
		}
	}

	return c, nil
}

// NewWithCredentials creates a client for the marketplace's regional host.
func NewWithCredentials(ctx context.Context, creds mws.Credentials) (mws.Client, error) {
	return New(ctx, &mws.Config{Credentials: creds})
}

// checkRequired reports the first missing credential field.
func checkRequired(creds *mws.Credentials) error {
	required := []struct {
		name  string
		value string
	}{
		{"SellerID", creds.SellerID},
		{"MarketplaceID", creds.MarketplaceID},
		{"AccessKeyID", creds.AccessKeyID},
		{"SecretKey", creds.SecretKey},
	}

	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s", mws.ErrRequiredFieldMissing, field.name)
		}
	}

	return nil
}

// resolveEndpoint normalizes an Endpoint override, or derives the base URL
// from the marketplace. The marketplace must be known in both cases unless
// SkipRequiredCheck is set.
func resolveEndpoint(config *mws.Config) (string, error) {
	if config.Endpoint != "" {
		if !config.SkipRequiredCheck {
			_, err := mws.MarketplaceHost(config.MarketplaceID)
			if err != nil {
				return "", err //nolint:wrapcheck // already names the marketplace
			}
		}

		endpoint := strings.TrimSuffix(config.Endpoint, "/")
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}

		return endpoint, nil
	}

	host, err := mws.MarketplaceHost(config.MarketplaceID)
	if err != nil {
		return "", err //nolint:wrapcheck // already names the marketplace
	}

	return "https://" + host, nil
}
