package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// CallOutput is the rendered result of a generic call.
type CallOutput struct {
	Operation string      `json:"operation"            yaml:"operation"`
	RequestID string      `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Pages     int         `json:"pages"                yaml:"pages"`
	NextToken string      `json:"next_token,omitempty" yaml:"next_token,omitempty"`
	Items     []*mws.Node `json:"items,omitempty"      yaml:"items,omitempty"`
	Response  *mws.Node   `json:"response,omitempty"   yaml:"response,omitempty"`
}

// NewCallCommand issues any operation of the table with raw parameters.
func NewCallCommand() *cobra.Command {
	var (
		all      bool
		raw      bool
		bodyFile string
	)

	cmd := &cobra.Command{
		Use:   "call OPERATION [KEY=VALUE...]",
		Short: "Call an operation",
		Long: `Call any remote operation with explicit request parameters.

Parameters are given as KEY=VALUE pairs using the service's own names, e.g.
  mws call GetOrder AmazonOrderId.Id.1=111-2222222-3333333
Credentials, signing, retries and the marketplace are filled in automatically.`,
		Args: requireArgs(1, "operation name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			options := &mws.CallOptions{AutoPaginate: all, Raw: raw}

			if bodyFile != "" {
				// bodyFile is chosen by the user running the command.
				body, err := os.ReadFile(bodyFile) //nolint:gosec // user-supplied input file
				if err != nil {
					return fmt.Errorf("reading %s: %w", bodyFile, err)
				}

				options.Body = body
			}

			client, err := clientFactory(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Call(cmd.Context(), args[0], params, options)
			if err != nil {
				return err //nolint:wrapcheck // mws errors carry the operation
			}

			if result.Response == nil {
				_, err = cmd.OutOrStdout().Write(result.Body)

				return err //nolint:wrapcheck // plain write
			}

			output := CallOutput{
				Operation: result.Operation,
				RequestID: result.RequestID,
				Pages:     result.Pages,
				NextToken: result.NextToken,
				Items:     result.Items,
				Response:  result.Response,
			}

			if len(result.Items) > 0 {
				output.Response = nil
			}

			root := output.Response
			if root == nil {
				root = mws.NewSequence(result.Items...)
			}

			return writeOutput(cmd.OutOrStdout(), output, treeTable(root))
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "follow NextToken and fetch every page")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the response body unprocessed")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "send the file as the request body (SubmitFeed)")

	return cmd
}
