package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for report downloads and feed uploads.
	ExtendedHTTPTimeout = 2 * time.Minute
)

// Retry limits.
const (
	// MaxThrottleAttempts is the ceiling on attempts of a throttled call,
	// counting the first one.
	MaxThrottleAttempts = 3

	// MaxRetryAfter caps a server-advised Retry-After delay.
	MaxRetryAfter = time.Hour

	// DefaultRetryWaitMin is the transport backoff floor for connection retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the transport backoff ceiling for connection retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Per-call identifier limits imposed by the service.
const (
	// MaxPricingIdentifiers bounds ASIN/SKU lists of the pricing calls.
	MaxPricingIdentifiers = 20

	// MaxMatchingIdentifiers bounds GetMatchingProductForId.
	MaxMatchingIdentifiers = 5

	// MaxInventorySKUs bounds ListInventorySupply.
	MaxInventorySKUs = 50

	// MaxListIdentifiers bounds report and feed id lists.
	MaxListIdentifiers = 100
)

// Protocol constants.
const (
	// SignatureMethod is the HMAC variant used for request signing.
	SignatureMethod = "HmacSHA256"

	// SignatureVersion is the signing scheme version.
	SignatureVersion = "2"

	// TimestampFormat is the wire format of the Timestamp parameter.
	TimestampFormat = "2006-01-02T15:04:05.000Z"

	// FeedDateFormat is the date format used inside feed documents.
	FeedDateFormat = "2006-01-02T15:04:05.000Z07:00"

	// FeedContentType is the content type of uploaded feeds.
	FeedContentType = "text/xml; charset=iso-8859-1"

	// FeedDocumentVersion is the Header/DocumentVersion of feed envelopes.
	FeedDocumentVersion = "1.01"
)

// Client identification.
const (
	// DefaultApplicationName is reported in x-amazon-user-agent.
	DefaultApplicationName = "MCS/MwsClient"

	// DefaultApplicationVersion is reported in x-amazon-user-agent.
	DefaultApplicationVersion = "0.1.0"

	// UserAgent is sent as the HTTP User-Agent header.
	UserAgent = "mws-go/0.1.0"
)

// Defaults applied by the orders and reports helpers.
const (
	// DefaultOrdersLookback is how far back ListOrders looks when no
	// CreatedAfter is given.
	DefaultOrdersLookback = 24 * time.Hour

	// DefaultReportLookback is the start of a report window when none is given.
	DefaultReportLookback = 24 * time.Hour
)

// Output formats supported by the CLI.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)
