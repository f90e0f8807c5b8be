package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/mws/internal/client"
	"github.com/fivetwenty-io/mws/internal/config"
	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

const twoOrders = `<Orders>
  <Order><AmazonOrderId>111-1</AmazonOrderId><OrderStatus>Shipped</OrderStatus>
    <OrderTotal><CurrencyCode>USD</CurrencyCode><Amount>9.99</Amount></OrderTotal></Order>
  <Order><AmazonOrderId>111-2</AmazonOrderId><OrderStatus>Pending</OrderStatus></Order>
</Orders>`

// setupCLI points the global configuration at a temporary file and, when
// fake is given, at the fake service with complete credentials.
func setupCLI(t *testing.T, fake *client.FakeMWS) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yml")
	viper.Set(config.KeyConfig, path)
	require.NoError(t, config.Prepare(viper.GetViper()))

	if fake != nil {
		viper.Set(config.KeySellerID, "A1SELLER")
		viper.Set(config.KeyMarketplaceID, "ATVPDKIKX0DER")
		viper.Set(config.KeyAccessKeyID, "AKIDEXAMPLE")
		viper.Set(config.KeySecretKey, "secret")
		viper.Set(config.KeyEndpoint, fake.Server.URL)
	}

	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestNewOrdersCommand(t *testing.T) {
	cmd := NewOrdersCommand()
	assert.Equal(t, "orders", cmd.Use)
	assert.Equal(t, []string{"order"}, cmd.Aliases)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "items"}, names)

	list := newOrdersListCommand()
	for _, flag := range []string{"created-after", "created-before", "status", "channel", "marketplace", "all-marketplaces"} {
		assert.NotNil(t, list.Flags().Lookup(flag), "Flag %s should exist", flag)
	}
}

func TestOrdersListCommand(t *testing.T) {
	fake := client.NewFakeMWS(t).OnXML("ListOrders", client.ResponseXML("ListOrders", twoOrders))
	setupCLI(t, fake)
	viper.Set(config.KeyOutput, constants.FormatJSON)

	out, err := execute(t, newOrdersListCommand(), "--created-after", "2020-01-02", "--status", "Shipped,Pending")
	require.NoError(t, err)

	var orders []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &orders))
	require.Len(t, orders, 2)
	assert.Equal(t, "111-2", orders[1]["AmazonOrderId"])

	query := fake.LastRequest(t).Query
	assert.Equal(t, "2020-01-02T00:00:00.000Z", query.Get("CreatedAfter"))
	assert.Equal(t, "Pending", query.Get("OrderStatus.Status.2"))
}

func TestOrdersListCommand_Table(t *testing.T) {
	fake := client.NewFakeMWS(t).OnXML("ListOrders", client.ResponseXML("ListOrders", twoOrders))
	setupCLI(t, fake)

	out, err := execute(t, newOrdersListCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "111-1")
	assert.Contains(t, out, "9.99")
	assert.Contains(t, out, NotAvailable)
}

func TestOrdersListCommand_Verbose(t *testing.T) {
	fake := client.NewFakeMWS(t).OnXML("ListOrders", client.ResponseXML("ListOrders", twoOrders))
	setupCLI(t, fake)
	viper.Set("verbose", true)

	var logs bytes.Buffer

	original := logOutput
	logOutput = &logs

	t.Cleanup(func() { logOutput = original })

	_, err := execute(t, newOrdersListCommand())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "DEBUG MWS Request attempt=1 method=POST operation=ListOrders")
	assert.Contains(t, logs.String(), "DEBUG MWS Response attempt=1 operation=ListOrders status_code=200")
}

func TestOrdersListCommand_InvalidDate(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, newOrdersListCommand(), "--created-after", "yesterday")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestCallCommand(t *testing.T) {
	fake := client.NewFakeMWS(t).OnXML("GetOrder", client.ResponseXML("GetOrder", twoOrders))
	setupCLI(t, fake)
	viper.Set(config.KeyOutput, constants.FormatYAML)

	out, err := execute(t, NewCallCommand(), "GetOrder", "AmazonOrderId.Id.1=111-1")
	require.NoError(t, err)
	assert.Contains(t, out, "operation: GetOrder")
	assert.Contains(t, out, "AmazonOrderId: 111-1")
	assert.Equal(t, "111-1", fake.LastRequest(t).Query.Get("AmazonOrderId.Id.1"))

	_, err = execute(t, NewCallCommand(), "GetOrder", "no-equals-sign")
	require.ErrorIs(t, err, constants.ErrInvalidParamFlag)
}

func TestCallCommand_Raw(t *testing.T) {
	fake := client.NewFakeMWS(t).On("GetReport", client.CannedResponse{
		Status:      http.StatusOK,
		ContentType: "text/plain",
		Body:        "sku\tqty\nA\t1\n",
	})
	setupCLI(t, fake)

	out, err := execute(t, NewCallCommand(), "GetReport", "ReportId=5", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "sku\tqty\nA\t1\n", out)
}

func TestFeedsStockCommand_DryRun(t *testing.T) {
	fake := client.NewFakeMWS(t)
	setupCLI(t, fake)

	out, err := execute(t, NewFeedsCommand(), "stock", "--dry-run", "--latency", "2", "SKU-1=5", "SKU-2=0")
	require.NoError(t, err)
	assert.Contains(t, out, "<Quantity>5</Quantity>")
	assert.Contains(t, out, "<FulfillmentLatency>2</FulfillmentLatency>")
	assert.Contains(t, out, "<SKU>SKU-2</SKU>")
	assert.Empty(t, fake.Requests())

	_, err = execute(t, NewFeedsCommand(), "stock", "SKU-1=many")
	require.ErrorIs(t, err, ErrInvalidStockArg)
}

func TestFeedsStatusCommand(t *testing.T) {
	fake := client.NewFakeMWS(t).OnXML("GetFeedSubmissionList", client.ResponseXML("GetFeedSubmissionList", `
<FeedSubmissionInfo><FeedSubmissionId>2</FeedSubmissionId><FeedProcessingStatus>_IN_PROGRESS_</FeedProcessingStatus></FeedSubmissionInfo>
<FeedSubmissionInfo><FeedSubmissionId>1</FeedSubmissionId><FeedProcessingStatus>_DONE_</FeedProcessingStatus></FeedSubmissionInfo>`))
	setupCLI(t, fake)
	viper.Set(config.KeyOutput, constants.FormatJSON)

	out, err := execute(t, NewFeedsCommand(), "status", "1", "2")
	require.NoError(t, err)

	var statuses []FeedStatus
	require.NoError(t, json.Unmarshal([]byte(out), &statuses))
	assert.Equal(t, []FeedStatus{{"1", "_DONE_"}, {"2", "_IN_PROGRESS_"}}, statuses)
}

func TestValidateCommand(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		fake := client.NewFakeMWS(t).On("ListOrderItems", client.CannedResponse{
			Status:      http.StatusBadRequest,
			ContentType: "text/xml",
			Body:        client.ErrorXML("InvalidParameterValue", "Invalid AmazonOrderId: validate"),
		})
		setupCLI(t, fake)

		out, err := execute(t, NewValidateCommand())
		require.NoError(t, err)
		assert.Contains(t, out, "Credentials are valid")
	})

	t.Run("rejected", func(t *testing.T) {
		fake := client.NewFakeMWS(t).On("ListOrderItems", client.CannedResponse{
			Status:      http.StatusForbidden,
			ContentType: "text/xml",
			Body:        client.ErrorXML("SignatureDoesNotMatch", "The signature does not match"),
		})
		setupCLI(t, fake)

		_, err := execute(t, NewValidateCommand())
		require.ErrorIs(t, err, constants.ErrCredentialsRejected)
	})

	t.Run("no credentials", func(t *testing.T) {
		setupCLI(t, nil)

		_, err := execute(t, NewValidateCommand())
		require.ErrorIs(t, err, constants.ErrNoCredentials)
	})
}

func TestConfigureCommand(t *testing.T) {
	path := setupCLI(t, nil)

	original := readSecret
	readSecret = func(io.Reader, io.Writer) (string, error) { return "s3cret\n", nil }

	t.Cleanup(func() { readSecret = original })

	cmd := NewConfigureCommand()
	cmd.SetIn(strings.NewReader("A1SELLER\n"))

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--name", "us", "--marketplace-id", "ATVPDKIKX0DER", "--access-key-id", "AKID"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), `Saved profile "us"`)

	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	assert.Contains(t, string(data), "seller_id: A1SELLER")
	assert.Contains(t, string(data), "secret_key: s3cret")
	assert.Contains(t, string(data), "current_profile: us")

	viper.Set(config.KeyOutput, constants.FormatJSON)

	shown, err := execute(t, NewConfigureCommand(), "show")
	require.NoError(t, err)

	var summaries []ProfileSummary
	require.NoError(t, json.Unmarshal([]byte(shown), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, Masked, summaries[0].SecretKey)
	assert.True(t, summaries[0].Current)

	_, err = execute(t, NewConfigureCommand(), "use", "eu")
	require.ErrorIs(t, err, constants.ErrUnknownProfile)
}

func TestConfigureCommand_RejectsUnknownMarketplace(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, NewConfigureCommand(),
		"--seller-id", "S", "--marketplace-id", "NOPE", "--access-key-id", "A", "--secret-key", "K")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid marketplace id")

	_, err = execute(t, NewConfigureCommand(),
		"--seller-id", "S", "--marketplace-id", "NOPE", "--access-key-id", "A", "--secret-key", "K",
		"--endpoint", "https://proxy.example.com")
	require.ErrorIs(t, err, mws.ErrInvalidMarketplace)
}

func TestConfigureCommand_NotInteractive(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, NewConfigureCommand(),
		"--seller-id", "S", "--marketplace-id", "ATVPDKIKX0DER", "--access-key-id", "A")
	require.ErrorIs(t, err, constants.ErrNotInteractive)
}

func TestMarketplacesAndOperationsCommands(t *testing.T) {
	setupCLI(t, nil)

	out, err := execute(t, NewMarketplacesCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "A1F83G8C2ARO7P")
	assert.Contains(t, out, "mws-eu.amazonservices.com")

	viper.Set(config.KeyOutput, constants.FormatYAML)

	out, err = execute(t, NewOperationsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "name: ListOrders")
	assert.Contains(t, out, "recovery_interval: 1m0s")

	viper.Set(config.KeyOutput, "xml")

	_, err = execute(t, NewVersionCommand("1.0.0", "abc", "today"))
	require.ErrorIs(t, err, constants.ErrUnsupportedFormat)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: ""},
		{in: "2020-01-02", want: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
		{in: "2020-01-02T03:04:05Z", want: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)},
		{in: "02/01/2020", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseDate(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidDate)

			continue
		}

		require.NoError(t, err)
		assert.True(t, tt.want.Equal(got), tt.in)
	}
}

func TestStderrLogger(t *testing.T) {
	var out bytes.Buffer

	logger := NewStderrLogger(&out)
	logger.Warn("Credentials rejected", map[string]interface{}{"kind": "Forbidden", "attempt": 1})
	logger.Debug("MWS Request", nil)

	assert.Equal(t, "WARN Credentials rejected attempt=1 kind=Forbidden\nDEBUG MWS Request\n", out.String())
}
