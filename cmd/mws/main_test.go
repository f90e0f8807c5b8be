package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := newRootCommand()
	assert.Equal(t, "mws", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	for _, name := range []string{"version", "configure", "validate", "marketplaces", "operations", "call", "orders", "products", "reports", "feeds"} {
		assert.Contains(t, names, name)
	}

	for _, flag := range []string{"config", "profile", "output", "seller-id", "marketplace-id", "endpoint", "rate-limit", "retries", "timeout", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "Flag %s should exist", flag)
	}
}
