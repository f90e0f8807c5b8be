package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mws/internal/constants"
)

// NewValidateCommand checks the configured credentials against the service.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configured credentials",
		Long:  "Send a harmless probe request to confirm the service accepts the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			valid, err := client.ValidateCredentials(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck // already descriptive
			}

			if !valid {
				return constants.ErrCredentialsRejected
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials are valid")

			return nil
		},
	}
}
