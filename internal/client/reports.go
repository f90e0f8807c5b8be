package client

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/internal/feed"
	"github.com/fivetwenty-io/mws/internal/xmltree"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

const (
	getReportOperation = "GetReport"
	reportListMaxCount = "100"
)

// ReportCacheConfig configures the report download cache.
type ReportCacheConfig struct {
	Cache   *mws.CacheManager
	TTL     time.Duration
	Metrics *mws.MetricsCollector
}

// ReportsClient implements mws.ReportsClient.
type ReportsClient struct {
	caller mws.Caller
	creds  mws.Credentials
	cache  *ReportCacheConfig
	group  singleflight.Group
	now    func() time.Time
}

// NewReportsClient creates a new reports client. A nil cache config disables
// caching.
func NewReportsClient(caller mws.Caller, creds mws.Credentials, cache *ReportCacheConfig) *ReportsClient {
	if cache == nil {
		cache = &ReportCacheConfig{Cache: mws.NewCacheManager(nil, nil), TTL: mws.DefaultReportCacheTTL}
	}

	return &ReportsClient{
		caller: caller,
		creds:  creds,
		cache:  cache,
		now:    time.Now,
	}
}

func (c *ReportsClient) marketplaces(ids []string) []string {
	if len(ids) > 0 {
		return ids
	}

	return []string{c.creds.MarketplaceID}
}

// Request implements mws.ReportsClient.Request. It returns the
// ReportRequestInfo element, which carries the ReportRequestId.
func (c *ReportsClient) Request(ctx context.Context, request *mws.ReportRequest) (*mws.Node, error) {
	params := mws.NewParams().
		WithList("MarketplaceIdList.Id", c.marketplaces(request.Marketplaces)...).
		Set("ReportType", request.ReportType)

	if !request.StartDate.IsZero() {
		params.Set("StartDate", formatTime(request.StartDate))
	}

	if !request.EndDate.IsZero() {
		params.Set("EndDate", formatTime(request.EndDate))
	}

	payload, err := call(ctx, c.caller, "RequestReport", params)
	if err != nil {
		return nil, fmt.Errorf("requesting report %s: %w", request.ReportType, err)
	}

	info := payload.Get("ReportRequestInfo")
	if info.Value("ReportRequestId") == "" {
		return nil, fmt.Errorf("%w: %s", mws.ErrReportRequestNotCreated, request.ReportType)
	}

	return info, nil
}

func listParams(options *mws.ReportListOptions) (*mws.Params, error) {
	if options == nil {
		options = &mws.ReportListOptions{}
	}

	err := checkLimit("report list", len(options.RequestIDs), constants.MaxListIdentifiers)
	if err != nil {
		return nil, err
	}

	params := mws.NewParams().
		Set("MaxCount", reportListMaxCount).
		WithList("ReportTypeList.Type", options.ReportTypes...).
		WithList("ReportRequestIdList.Id", options.RequestIDs...)

	return params, nil
}

// List implements mws.ReportsClient.List. Only the first page is returned.
func (c *ReportsClient) List(ctx context.Context, options *mws.ReportListOptions) ([]*mws.Node, error) {
	params, err := listParams(options)
	if err != nil {
		return nil, err
	}

	result, err := c.caller.Call(ctx, "GetReportList", params, nil)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	return nonNil(result.Items), nil
}

// ListRequests implements mws.ReportsClient.ListRequests.
func (c *ReportsClient) ListRequests(ctx context.Context, options *mws.ReportListOptions) ([]*mws.Node, error) {
	params, err := listParams(options)
	if err != nil {
		return nil, err
	}

	result, err := c.caller.Call(ctx, "GetReportRequestList", params, nil)
	if err != nil {
		return nil, fmt.Errorf("listing report requests: %w", err)
	}

	return nonNil(result.Items), nil
}

// RequestStatus implements mws.ReportsClient.RequestStatus.
func (c *ReportsClient) RequestStatus(ctx context.Context, reportRequestID string) (*mws.Node, error) {
	params := mws.NewParams().Set("ReportRequestIdList.Id.1", reportRequestID)

	result, err := c.caller.Call(ctx, "GetReportRequestList", params, nil)
	if err != nil {
		return nil, fmt.Errorf("getting status of report request %s: %w", reportRequestID, err)
	}

	if len(result.Items) == 0 {
		return nil, &mws.Error{
			Kind:      mws.KindNotFound,
			Message:   "report request " + reportRequestID + " not found",
			Operation: "GetReportRequestList",
		}
	}

	return result.Items[0], nil
}

// Get implements mws.ReportsClient.Get. Report bodies are immutable, so they
// are served from the cache when present, and concurrent downloads of the
// same report share one request.
func (c *ReportsClient) Get(ctx context.Context, reportID string) (*mws.Report, error) {
	key := c.cache.Cache.GetCacheKey(getReportOperation, map[string]string{"ReportId": reportID})

	entry, err := c.cache.Cache.Get(ctx, key)
	if err == nil && !entry.Expired(c.now()) {
		c.cache.Metrics.RecordCacheHit(getReportOperation)

		report, decodeErr := decodeReport(reportID, entry.Data, entry.ContentType)
		if decodeErr != nil {
			return nil, decodeErr
		}

		report.Cached = true

		return report, nil
	}

	c.cache.Metrics.RecordCacheMiss(getReportOperation)

	// The shared download outlives any single caller; each caller still
	// stops waiting when its own context ends.
	results := c.group.DoChan(key, func() (interface{}, error) {
		downloadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ExtendedHTTPTimeout)
		defer cancel()

		return c.download(downloadCtx, key, reportID)
	})

	var shared singleflight.Result

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("downloading report %s: %w", reportID, ctx.Err())
	case shared = <-results:
	}

	if shared.Err != nil {
		return nil, shared.Err //nolint:wrapcheck // download wraps
	}

	downloaded, ok := shared.Val.(*mws.CacheEntry)
	if !ok {
		return nil, fmt.Errorf("downloading report %s: %w", reportID, mws.ErrUnexpectedResponse)
	}

	return decodeReport(reportID, downloaded.Data, downloaded.ContentType)
}

func (c *ReportsClient) download(ctx context.Context, key, reportID string) (*mws.CacheEntry, error) {
	params := mws.NewParams().Set("ReportId", reportID)

	result, err := c.caller.Call(ctx, getReportOperation, params, &mws.CallOptions{Raw: true})
	if err != nil {
		return nil, fmt.Errorf("downloading report %s: %w", reportID, err)
	}

	// A failed cache write only costs a later re-download.
	_ = c.cache.Cache.Set(ctx, key, result.Body, result.ContentType, c.cache.TTL)

	return &mws.CacheEntry{Data: result.Body, ContentType: result.ContentType}, nil
}

func decodeReport(reportID string, body []byte, contentType string) (*mws.Report, error) {
	report := &mws.Report{ID: reportID, ContentType: contentType}

	if xmltree.IsXML(contentType) || bytes.HasPrefix(bytes.TrimSpace(body), []byte("<?xml")) {
		document, err := xmltree.Parse(body)
		if err != nil {
			return nil, fmt.Errorf("decoding report %s: %w", reportID, err)
		}

		report.Document = document

		return report, nil
	}

	header, rows, err := feed.DecodeReport(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", reportID, err)
	}

	report.Header = header
	report.Rows = rows

	return report, nil
}
