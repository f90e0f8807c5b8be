package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/mws/internal/config"
	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// ProfileSummary is the masked view of a stored profile.
type ProfileSummary struct {
	Name          string `json:"name"                yaml:"name"`
	Current       bool   `json:"current"             yaml:"current"`
	SellerID      string `json:"seller_id"           yaml:"seller_id"`
	MarketplaceID string `json:"marketplace_id"      yaml:"marketplace_id"`
	AccessKeyID   string `json:"access_key_id"       yaml:"access_key_id"`
	SecretKey     string `json:"secret_key"          yaml:"secret_key"`
	Endpoint      string `json:"endpoint,omitempty"  yaml:"endpoint,omitempty"`
}

// readSecret reads a secret without echo; tests replace it.
var readSecret = func(in io.Reader, out io.Writer) (string, error) {
	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return "", constants.ErrNotInteractive
	}

	secret, err := term.ReadPassword(int(file.Fd()))
	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	return string(secret), nil
}

// NewConfigureCommand creates the configure command group.
func NewConfigureCommand() *cobra.Command {
	var (
		name    string
		profile config.Profile
	)

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Store seller credentials",
		Long: `Store the credentials of a seller account as a named profile.

Values not given as flags are prompted for; the secret key is read without echo.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			existing, _ := cfg.Profile(name)
			if existing != nil {
				mergeProfile(&profile, existing)
			}

			err = promptProfile(cmd, &profile)
			if err != nil {
				return err
			}

			_, err = mws.MarketplaceHost(profile.MarketplaceID)
			if err != nil {
				return err //nolint:wrapcheck // already names the marketplace
			}

			cfg.SetProfile(name, &profile)

			err = config.Save(viper.ConfigFileUsed(), cfg)
			if err != nil {
				return err //nolint:wrapcheck // already descriptive
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %q to %s\n", name, viper.ConfigFileUsed())

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", config.DefaultProfile, "profile name")
	cmd.Flags().StringVar(&profile.SellerID, "seller-id", "", "seller (merchant) id")
	cmd.Flags().StringVar(&profile.MarketplaceID, "marketplace-id", "", "marketplace id")
	cmd.Flags().StringVar(&profile.AccessKeyID, "access-key-id", "", "access key id")
	cmd.Flags().StringVar(&profile.SecretKey, "secret-key", "", "secret key (prompted when omitted)")
	cmd.Flags().StringVar(&profile.AuthToken, "auth-token", "", "MWS auth token for delegated access")
	cmd.Flags().StringVar(&profile.Endpoint, "endpoint", "", "override the service base URL")

	cmd.AddCommand(newConfigureShowCommand())
	cmd.AddCommand(newConfigureUseCommand())
	cmd.AddCommand(newConfigureRemoveCommand())

	return cmd
}

func mergeProfile(target, existing *config.Profile) {
	fields := []struct {
		target *string
		value  string
	}{
		{&target.SellerID, existing.SellerID},
		{&target.MarketplaceID, existing.MarketplaceID},
		{&target.AccessKeyID, existing.AccessKeyID},
		{&target.SecretKey, existing.SecretKey},
		{&target.AuthToken, existing.AuthToken},
		{&target.Endpoint, existing.Endpoint},
	}

	for _, field := range fields {
		if *field.target == "" {
			*field.target = field.value
		}
	}
}

func promptProfile(cmd *cobra.Command, profile *config.Profile) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	prompts := []struct {
		label  string
		target *string
	}{
		{"Seller ID", &profile.SellerID},
		{"Marketplace ID", &profile.MarketplaceID},
		{"Access key ID", &profile.AccessKeyID},
	}

	for _, prompt := range prompts {
		if *prompt.target != "" {
			continue
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ", prompt.label)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading %s: %w", prompt.label, err)
		}

		*prompt.target = strings.TrimSpace(line)
		if *prompt.target == "" {
			return fmt.Errorf("%w: %s", mws.ErrRequiredFieldMissing, prompt.label)
		}
	}

	if profile.SecretKey == "" {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), "Secret key: ")

		secret, err := readSecret(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}

		profile.SecretKey = strings.TrimSpace(secret)
		if profile.SecretKey == "" {
			return constants.ErrEmptySecret
		}
	}

	return nil
}

func newConfigureShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show stored profiles",
		Long:  "Display the stored profiles with their secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			summaries := make([]ProfileSummary, 0, len(cfg.Profiles))

			for _, name := range cfg.ProfileNames() {
				profile := cfg.Profiles[name]
				summaries = append(summaries, ProfileSummary{
					Name:          name,
					Current:       name == cfg.CurrentProfile,
					SellerID:      profile.SellerID,
					MarketplaceID: profile.MarketplaceID,
					AccessKeyID:   profile.AccessKeyID,
					SecretKey:     mask(profile.SecretKey),
					Endpoint:      profile.Endpoint,
				})
			}

			return writeOutput(cmd.OutOrStdout(), summaries, func(table *tablewriter.Table) {
				table.Header("Profile", "Current", "Seller", "Marketplace", "Access Key", "Secret", "Endpoint")

				for _, summary := range summaries {
					_ = table.Append(summary.Name, yesNo(summary.Current), summary.SellerID, summary.MarketplaceID,
						summary.AccessKeyID, summary.SecretKey, valueOrNA(summary.Endpoint))
				}
			})
		},
	}
}

func newConfigureUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use PROFILE",
		Short: "Select the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			_, err = cfg.Profile(args[0])
			if err != nil {
				return err //nolint:wrapcheck // names the profile
			}

			cfg.CurrentProfile = args[0]

			return config.Save(viper.ConfigFileUsed(), cfg) //nolint:wrapcheck // already descriptive
		},
	}
}

func newConfigureRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROFILE",
		Short: "Delete a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			_, err = cfg.Profile(args[0])
			if err != nil {
				return err //nolint:wrapcheck // names the profile
			}

			delete(cfg.Profiles, args[0])

			if cfg.CurrentProfile == args[0] {
				cfg.CurrentProfile = ""
			}

			return config.Save(viper.ConfigFileUsed(), cfg) //nolint:wrapcheck // already descriptive
		},
	}
}
