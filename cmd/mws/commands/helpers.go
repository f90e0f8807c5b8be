package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/mws/internal/config"
	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
	"github.com/fivetwenty-io/mws/pkg/mwsclient"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Yes          = "yes"
	No           = "no"
	Masked       = "***"

	defaultJSONIndent = 2
	dateLayout        = "2006-01-02"
)

// Common static errors used throughout the commands package.
var (
	ErrInvalidStockArg  = errors.New("stock updates must be given as SKU=QUANTITY")
	ErrInvalidPriceArg  = errors.New("price updates must be given as SKU=PRICE")
	ErrInvalidDate      = errors.New("dates must be given as YYYY-MM-DD or RFC 3339")
	ErrNothingToSubmit  = errors.New("nothing to submit")
	ErrFeedBodyRequired = errors.New("a feed body is required (use --file)")
)

// clientFactory builds the client used by commands; tests replace it.
var clientFactory = newClient

// logOutput receives --verbose logs.
var logOutput io.Writer = os.Stderr

func newClient(ctx context.Context) (mws.Client, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	clientConfig, err := cfg.ClientConfig(viper.GetViper())
	if err != nil {
		return nil, err //nolint:wrapcheck // already descriptive
	}

	if viper.GetBool("verbose") {
		logger := NewStderrLogger(logOutput)

		clientConfig.Debug = true
		clientConfig.Logger = logger
		clientConfig.Interceptors = clientConfig.Interceptors.Clone().
			AddRequestInterceptor(mws.LoggingInterceptor(logger)).
			AddResponseInterceptor(mws.LoggingResponseInterceptor(logger))
	}

	client, err := mwsclient.New(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// writeOutput renders value in the configured format. The table callback is
// used for the table format only.
func writeOutput(w io.Writer, value interface{}, table func(*tablewriter.Table)) error {
	switch format := viper.GetString(config.KeyOutput); format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		return encoder.Encode(value) //nolint:wrapcheck // encoding errors are self-explanatory
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value) //nolint:wrapcheck // encoding errors are self-explanatory
	case constants.FormatTable, "":
		writer := tablewriter.NewWriter(w)
		table(writer)

		err := writer.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}
}

// nodeTable renders the selected fields of each node as one row.
func nodeTable(nodes []*mws.Node, columns []string, paths [][]string) func(*tablewriter.Table) {
	return func(table *tablewriter.Table) {
		header := make([]interface{}, len(columns))
		for i, column := range columns {
			header[i] = column
		}

		table.Header(header...)

		for _, node := range nodes {
			row := make([]string, len(paths))
			for i, path := range paths {
				row[i] = valueOrNA(node.Value(path...))
			}

			_ = table.Append(row)
		}
	}
}

// treeTable flattens a node into path/value rows.
func treeTable(node *mws.Node) func(*tablewriter.Table) {
	return func(table *tablewriter.Table) {
		table.Header("Field", "Value")

		for _, row := range flatten("", node) {
			_ = table.Append(row)
		}
	}
}

func flatten(prefix string, node *mws.Node) [][]string {
	if node == nil {
		return nil
	}

	join := func(key string) string {
		if prefix == "" {
			return key
		}

		return prefix + "." + key
	}

	switch node.Kind {
	case mws.KindMapping:
		var rows [][]string
		for _, key := range node.Keys() {
			rows = append(rows, flatten(join(key), node.Get(key))...)
		}

		if node.Text != "" {
			rows = append(rows, []string{prefix, node.Text})
		}

		return rows
	case mws.KindSequence:
		var rows [][]string
		for i, item := range node.Items() {
			rows = append(rows, flatten(join(strconv.Itoa(i)), item)...)
		}

		return rows
	default:
		return [][]string{{prefix, node.Text}}
	}
}

func valueOrNA(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func yesNo(value bool) string {
	if value {
		return Yes
	}

	return No
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	return parsed, nil
}

// parseParams turns key=value arguments into request parameters.
func parseParams(args []string) (*mws.Params, error) {
	params := mws.NewParams()

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParamFlag, arg)
		}

		params.Set(key, value)
	}

	return params, nil
}

// splitPairs parses SKU=VALUE arguments.
func splitPairs(args []string, errInvalid error) ([][2]string, error) {
	pairs := make([][2]string, 0, len(args))

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("%w: %q", errInvalid, arg)
		}

		pairs = append(pairs, [2]string{key, value})
	}

	return pairs, nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}

	return Masked
}

// StderrLogger writes log lines as "LEVEL message key=value ...".
type StderrLogger struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStderrLogger creates a logger writing to out.
func NewStderrLogger(out io.Writer) *StderrLogger {
	return &StderrLogger{out: out}
}

func (l *StderrLogger) log(level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var line strings.Builder

	line.WriteString(level)
	line.WriteString(" ")
	line.WriteString(msg)

	for _, key := range keys {
		fmt.Fprintf(&line, " %s=%v", key, fields[key])
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.out, line.String())
}

// Debug implements mws.Logger.
func (l *StderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("DEBUG", msg, fields) }

// Info implements mws.Logger.
func (l *StderrLogger) Info(msg string, fields map[string]interface{}) { l.log("INFO", msg, fields) }

// Warn implements mws.Logger.
func (l *StderrLogger) Warn(msg string, fields map[string]interface{}) { l.log("WARN", msg, fields) }

// Error implements mws.Logger.
func (l *StderrLogger) Error(msg string, fields map[string]interface{}) { l.log("ERROR", msg, fields) }

// requireArgs is cobra.MinimumNArgs with a friendlier message.
func requireArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return fmt.Errorf("requires at least %d %s", n, what) //nolint:err113 // usage message
		}

		return nil
	}
}
