package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/mws/cmd/mws/commands"
	"github.com/fivetwenty-io/mws/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mws",
		Short: "Amazon Marketplace Web Service CLI",
		Long: `A command-line interface for the Amazon Marketplace Web Service.

Credentials are read from ~/.mws/config.yml (see "mws configure"), MWS_*
environment variables, a .env file in the working directory, or flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Prepare(viper.GetViper()) //nolint:wrapcheck // already descriptive
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(config.KeyConfig, "c", "", "config file (default is $HOME/.mws/config.yml)")
	flags.StringP(config.KeyProfile, "p", "", "profile to use")
	flags.StringP(config.KeyOutput, "o", "table", "output format (table, json, yaml)")
	flags.String("seller-id", "", "seller id, overriding the profile")
	flags.String("marketplace-id", "", "marketplace id, overriding the profile")
	flags.String("endpoint", "", "service base URL, overriding the marketplace host")
	flags.Int("rate-limit", 0, "maximum requests per second")
	flags.Int(config.KeyRetries, 0, "retries of failed connections")
	flags.Duration(config.KeyTimeout, 0, "HTTP timeout per request")
	flags.BoolP("verbose", "v", false, "log requests to stderr")

	bindings := map[string]string{
		config.KeyConfig:        config.KeyConfig,
		config.KeyProfile:       config.KeyProfile,
		config.KeyOutput:        config.KeyOutput,
		config.KeySellerID:      "seller-id",
		config.KeyMarketplaceID: "marketplace-id",
		config.KeyEndpoint:      "endpoint",
		config.KeyRateLimit:     "rate-limit",
		config.KeyRetries:       config.KeyRetries,
		config.KeyTimeout:       config.KeyTimeout,
		"verbose":               "verbose",
	}

	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigureCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewMarketplacesCommand())
	rootCmd.AddCommand(commands.NewOperationsCommand())
	rootCmd.AddCommand(commands.NewCallCommand())
	rootCmd.AddCommand(commands.NewOrdersCommand())
	rootCmd.AddCommand(commands.NewProductsCommand())
	rootCmd.AddCommand(commands.NewReportsCommand())
	rootCmd.AddCommand(commands.NewFeedsCommand())

	return rootCmd
}

func main() {
	err := config.LoadDotEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = newRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
