// Package pipeline turns an operation name and parameters into a signed
// request, sends it, and turns the response into a result or a classified
// error. Throttled calls are retried and paginated results followed here.
package pipeline

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // Content-MD5 is mandated by the protocol
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/internal/signer"
	"github.com/fivetwenty-io/mws/internal/xmltree"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// Request parameter names set by the pipeline.
const (
	ParamTimestamp        = "Timestamp"
	ParamAccessKeyID      = "AWSAccessKeyId"
	ParamAction           = "Action"
	ParamSellerID         = "SellerId"
	ParamSignatureMethod  = "SignatureMethod"
	ParamSignatureVersion = "SignatureVersion"
	ParamVersion          = "Version"
	ParamAuthToken        = "MWSAuthToken"
	ParamNextToken        = "NextToken"
	ParamMarketplaceID    = "MarketplaceId"
	ParamMarketplaceList  = "MarketplaceId.Id."
	ParamMarketplaceIDs   = "MarketplaceIdList.Id."
	defaultMarketplaceKey = "MarketplaceId.Id.1"
	headerUserAgent       = "x-amazon-user-agent"
	headerRequestID       = "x-mws-request-id"
)

var (
	ErrTransportRequired = errors.New("pipeline transport is required")
	ErrRegistryRequired  = errors.New("pipeline registry is required")
	ErrInvalidBaseURL    = errors.New("invalid base URL")
)

// Transport sends one HTTP request. Implementations must not retry on HTTP
// status; throttling is handled by the pipeline.
type Transport interface {
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds the pipeline's collaborators.
type Config struct {
	Credentials mws.Credentials
	// BaseURL is scheme and host, e.g. https://mws.amazonservices.com.
	BaseURL   string
	Registry  mws.Registry
	Transport Transport
	// ApplicationName and ApplicationVersion form x-amazon-user-agent.
	ApplicationName    string
	ApplicationVersion string

	Logger       mws.Logger
	Interceptors *mws.InterceptorChain
	Metrics      *mws.MetricsCollector

	Retry *RetryPolicy
	Sleep Sleeper
	Now   func() time.Time
}

// Pipeline executes operations. It holds no per-call state and is safe for
// concurrent use.
type Pipeline struct {
	creds        mws.Credentials
	baseURL      string
	host         string
	registry     mws.Registry
	transport    Transport
	signer       *signer.Signer
	userAgent    string
	logger       mws.Logger
	interceptors *mws.InterceptorChain
	metrics      *mws.MetricsCollector
	retry        *RetryPolicy
	sleep        Sleeper
	now          func() time.Time
}

// New creates a pipeline.
func New(config *Config) (*Pipeline, error) {
	if config.Transport == nil {
		return nil, ErrTransportRequired
	}

	if config.Registry == nil {
		return nil, ErrRegistryRequired
	}

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, config.BaseURL)
	}

	appName := config.ApplicationName
	if appName == "" {
		appName = constants.DefaultApplicationName
	}

	appVersion := config.ApplicationVersion
	if appVersion == "" {
		appVersion = constants.DefaultApplicationVersion
	}

	p := &Pipeline{
		creds:        config.Credentials,
		baseURL:      base.Scheme + "://" + base.Host,
		host:         base.Host,
		registry:     config.Registry,
		transport:    config.Transport,
		signer:       signer.New(config.Credentials.SecretKey),
		userAgent:    appName + "/" + appVersion,
		logger:       config.Logger,
		interceptors: config.Interceptors,
		metrics:      config.Metrics,
		retry:        config.Retry,
		sleep:        config.Sleep,
		now:          config.Now,
	}

	if p.retry == nil {
		p.retry = DefaultRetryPolicy()
	}

	if p.sleep == nil {
		p.sleep = SleepContext
	}

	if p.now == nil {
		p.now = time.Now
	}

	return p, nil
}

// requestContext is the state of one logical request across its attempts.
type requestContext struct {
	desc    *mws.OperationDescriptor
	params  *mws.Params
	body    []byte
	attempt int
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// Call resolves operation, sends it and returns its result. With
// options.AutoPaginate the continuation token is followed until exhausted
// and Result.Items holds every page's items in server order.
func (p *Pipeline) Call(ctx context.Context, operation string, params *mws.Params, options *mws.CallOptions) (*mws.Result, error) {
	if options == nil {
		options = &mws.CallOptions{}
	}

	desc, err := p.registry.Resolve(operation)
	if err != nil {
		p.metrics.RecordError(operation, mws.KindOf(err))

		return nil, err //nolint:wrapcheck // already an *mws.Error
	}

	pager := newPaginator(options.AutoPaginate && !options.Raw)
	reqCtx := &requestContext{desc: desc, params: params.Clone(), body: options.Body}

	for {
		err = pager.begin()
		if err != nil {
			return nil, err
		}

		resp, err := p.execute(ctx, reqCtx)
		if err != nil {
			return nil, err
		}

		p.metrics.RecordPage(reqCtx.desc.Action)

		contentType := resp.header.Get("Content-Type")
		if options.Raw || !xmltree.IsXML(contentType) {
			return &mws.Result{
				Operation:   reqCtx.desc.Action,
				Body:        resp.body,
				ContentType: contentType,
				RequestID:   resp.header.Get(headerRequestID),
				Pages:       1,
			}, nil
		}

		tree, err := xmltree.Parse(resp.body)
		if err != nil {
			return nil, &mws.Error{
				Kind:       mws.KindUnexpectedResponse,
				Message:    "response body could not be parsed",
				StatusCode: resp.status,
				Operation:  reqCtx.desc.Action,
				Cause:      err,
			}
		}

		token, err := pager.receive(reqCtx.desc, tree)
		if err != nil {
			return nil, err
		}

		if token == "" {
			result := pager.result()
			result.ContentType = contentType
			result.RequestID = xmltree.RequestID(tree)

			return result, nil
		}

		reqCtx, err = p.continuation(reqCtx.desc, token)
		if err != nil {
			return nil, err
		}
	}
}

// continuation builds the follow-up request: only the token, addressed at
// the ByNextToken variant of the base operation.
func (p *Pipeline) continuation(desc *mws.OperationDescriptor, token string) (*requestContext, error) {
	next, err := p.registry.Resolve(desc.BaseName() + mws.ContinuationSuffix)
	if err != nil {
		return nil, err //nolint:wrapcheck // already an *mws.Error
	}

	return &requestContext{
		desc:   next,
		params: mws.NewParams().Set(ParamNextToken, token),
	}, nil
}

// execute sends the request, retrying throttled attempts per the policy.
func (p *Pipeline) execute(ctx context.Context, reqCtx *requestContext) (*response, error) {
	action := reqCtx.desc.Action

	for {
		reqCtx.attempt++

		resp, err := p.send(ctx, reqCtx)
		if err != nil {
			p.metrics.RecordError(action, mws.KindOf(err))

			return nil, err
		}

		failure := p.classify(reqCtx, resp)
		if failure == nil {
			return resp, nil
		}

		if failure.Kind == mws.KindRequestThrottled {
			p.metrics.RecordThrottle(action)
		}

		delay, retry := p.retry.Decide(reqCtx.desc, reqCtx.attempt, failure, resp.header)
		if !retry {
			failure.Attempts = reqCtx.attempt
			p.metrics.RecordError(action, failure.Kind)

			if p.logger != nil && p.retry.Exhausted(reqCtx.desc, reqCtx.attempt, failure) {
				p.logger.Error("Retry limit reached", map[string]interface{}{
					"operation": action,
					"attempts":  reqCtx.attempt,
				})
			}

			return nil, failure
		}

		if p.logger != nil {
			p.logger.Warn("Request throttled, retrying", map[string]interface{}{
				"operation": action,
				"attempt":   reqCtx.attempt,
				"delay":     delay.String(),
			})
		}

		p.metrics.RecordRetry(action, reqCtx.attempt+1)

		err = p.sleep(ctx, delay)
		if err != nil {
			return nil, fmt.Errorf("waiting to retry %s: %w", action, err)
		}
	}
}

func (p *Pipeline) classify(reqCtx *requestContext, resp *response) *mws.Error {
	var code, message, requestID string

	if resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices {
		if envelope := xmltree.ParseError(resp.body); envelope != nil {
			code, message, requestID = envelope.Code, envelope.Message, envelope.RequestID
		} else {
			message = strings.TrimSpace(string(resp.body))
			if message == "" {
				message = http.StatusText(resp.status)
			}
		}
	}

	failure := Classify(resp.status, code, message)
	if failure == nil {
		return nil
	}

	failure.Operation = reqCtx.desc.Action
	failure.RequestID = requestID

	if failure.RequestID == "" {
		failure.RequestID = resp.header.Get(headerRequestID)
	}

	return failure
}

// send performs one attempt. The query is rebuilt and re-signed every time
// so the timestamp is fresh.
func (p *Pipeline) send(ctx context.Context, reqCtx *requestContext) (*response, error) {
	desc := reqCtx.desc
	query := p.signedQuery(reqCtx)

	headers := make(http.Header)
	headers.Set("Accept", "application/xml")
	headers.Set(headerUserAgent, p.userAgent)

	if desc.Upload {
		sum := md5.Sum(reqCtx.body) //nolint:gosec // Content-MD5 is mandated by the protocol
		headers.Set("Content-MD5", base64.StdEncoding.EncodeToString(sum[:]))
		headers.Set("Content-Type", constants.FeedContentType)
	}

	intercepted := &mws.Request{
		Operation: desc.Action,
		Method:    desc.Method,
		URL:       p.baseURL + desc.Path + "?" + query,
		Headers:   headers,
		Body:      reqCtx.body,
		Attempt:   reqCtx.attempt,
	}

	err := p.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, fmt.Errorf("preparing %s: %w", desc.Action, err)
	}

	var body io.Reader
	if len(intercepted.Body) > 0 {
		body = bytes.NewReader(intercepted.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, intercepted.Method, intercepted.URL, body)
	if err != nil {
		_ = p.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &mws.Response{Error: err})

		return nil, fmt.Errorf("creating request for %s: %w", desc.Action, err)
	}

	httpReq.Header = intercepted.Headers

	httpResp, err := p.transport.Send(ctx, httpReq)
	if err != nil {
		_ = p.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &mws.Response{Error: err})

		return nil, TransportError(desc.Action, err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		_ = p.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &mws.Response{
			StatusCode: httpResp.StatusCode,
			Headers:    httpResp.Header,
			Error:      err,
		})

		return nil, TransportError(desc.Action, fmt.Errorf("reading response body: %w", err))
	}

	err = p.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &mws.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       data,
	})
	if err != nil {
		return nil, fmt.Errorf("processing %s response: %w", desc.Action, err)
	}

	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: data}, nil
}

// signedQuery merges the mandatory fields into the caller's parameters,
// applies the marketplace rule and signs the result.
func (p *Pipeline) signedQuery(reqCtx *requestContext) string {
	desc := reqCtx.desc

	values := reqCtx.params.ToValues()
	values.Set(ParamTimestamp, p.now().UTC().Format(constants.TimestampFormat))
	values.Set(ParamAccessKeyID, p.creds.AccessKeyID)
	values.Set(ParamAction, desc.Action)
	values.Set(ParamSellerID, p.creds.SellerID)
	values.Set(ParamSignatureMethod, constants.SignatureMethod)
	values.Set(ParamSignatureVersion, constants.SignatureVersion)
	values.Set(ParamVersion, desc.Version)

	if p.creds.AuthToken != "" {
		values.Set(ParamAuthToken, p.creds.AuthToken)
	}

	ApplyMarketplaceRule(values, desc, p.creds.MarketplaceID)

	if desc.Upload {
		values.Del(ParamSellerID)
	}

	return p.signer.SignParams(desc.Method, p.host, desc.Path, values)
}

// ApplyMarketplaceRule resolves the marketplace parameters of a request. The
// singular MarketplaceId is dropped whenever a list form is present. The
// default marketplace is added as MarketplaceId.Id.1 only when no
// marketplace parameter was given and the request is neither a continuation
// nor an upload.
func ApplyMarketplaceRule(values url.Values, desc *mws.OperationDescriptor, defaultMarketplace string) {
	hasList := hasKeyPrefix(values, ParamMarketplaceList) || hasKeyPrefix(values, ParamMarketplaceIDs)

	if hasList {
		values.Del(ParamMarketplaceID)

		return
	}

	if values.Has(ParamMarketplaceID) || desc.IsContinuation() || desc.Upload || defaultMarketplace == "" {
		return
	}

	values.Set(defaultMarketplaceKey, defaultMarketplace)
}

func hasKeyPrefix(values url.Values, prefix string) bool {
	for key := range values {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}
