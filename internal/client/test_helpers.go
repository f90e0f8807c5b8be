package client

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// testCredentials are the credentials every test client signs with.
var testCredentials = mws.Credentials{
	SellerID:      "A1SELLER",
	MarketplaceID: "ATVPDKIKX0DER",
	AccessKeyID:   "AKIDEXAMPLE",
	SecretKey:     "secret",
}

// CannedResponse is what the fake service answers for one action.
type CannedResponse struct {
	Status      int
	ContentType string
	Body        string
	Header      map[string]string
}

// RecordedRequest is a request received by the fake service.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FakeMWS serves canned responses keyed by the Action parameter. Actions
// without a response get a 400 InvalidParameterValue error.
type FakeMWS struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses map[string][]CannedResponse
	requests  []RecordedRequest
}

// NewFakeMWS starts a fake service. It is closed when the test ends.
func NewFakeMWS(t *testing.T) *FakeMWS {
	t.Helper()

	fake := &FakeMWS{responses: make(map[string][]CannedResponse)}
	fake.Server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.Server.Close)

	return fake
}

// On queues responses for an action. The last response repeats once the
// queue is drained.
func (f *FakeMWS) On(action string, responses ...CannedResponse) *FakeMWS {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses[action] = append(f.responses[action], responses...)

	return f
}

// OnXML queues a 200 XML response for an action.
func (f *FakeMWS) OnXML(action, body string) *FakeMWS {
	return f.On(action, CannedResponse{Status: http.StatusOK, ContentType: "text/xml", Body: body})
}

// Requests returns the requests received so far.
func (f *FakeMWS) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)

	return out
}

// LastRequest returns the most recent request.
func (f *FakeMWS) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()

	requests := f.Requests()
	require.NotEmpty(t, requests)

	return requests[len(requests)-1]
}

func (f *FakeMWS) serve(writer http.ResponseWriter, request *http.Request) {
	body, _ := io.ReadAll(request.Body)
	action := request.URL.Query().Get("Action")

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: request.Method,
		Path:   request.URL.Path,
		Query:  request.URL.Query(),
		Header: request.Header.Clone(),
		Body:   body,
	})

	queue := f.responses[action]

	var response CannedResponse

	switch len(queue) {
	case 0:
		response = CannedResponse{
			Status:      http.StatusBadRequest,
			ContentType: "text/xml",
			Body:        ErrorXML("InvalidParameterValue", "no canned response for "+action),
		}
	case 1:
		response = queue[0]
	default:
		response = queue[0]
		f.responses[action] = queue[1:]
	}
	f.mu.Unlock()

	for key, value := range response.Header {
		writer.Header().Set(key, value)
	}

	if response.ContentType != "" {
		writer.Header().Set("Content-Type", response.ContentType)
	}

	status := response.Status
	if status == 0 {
		status = http.StatusOK
	}

	writer.WriteHeader(status)
	_, _ = io.WriteString(writer, response.Body)
}

// NewTestClient creates a client pointed at the fake service.
func NewTestClient(t *testing.T, fake *FakeMWS) *Client {
	t.Helper()

	client, err := New(&mws.Config{
		Credentials: testCredentials,
		Endpoint:    fake.Server.URL,
	})
	require.NoError(t, err)

	return client
}

// ResponseXML wraps a result body in the <Action>Response envelope.
func ResponseXML(action, result string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<%[1]sResponse xmlns="https://mws.amazonservices.com/">
  <%[1]sResult>%[2]s</%[1]sResult>
  <ResponseMetadata><RequestId>req-%[1]s</RequestId></ResponseMetadata>
</%[1]sResponse>`, action, result)
}

// MultiResultXML wraps several result elements, as batched product calls do.
func MultiResultXML(action string, results ...string) string {
	body := fmt.Sprintf(`<?xml version="1.0"?><%sResponse>`, action)
	for _, result := range results {
		body += result
	}

	return body + fmt.Sprintf(`<ResponseMetadata><RequestId>req-%[1]s</RequestId></ResponseMetadata></%[1]sResponse>`, action)
}

// ErrorXML renders a service error document.
func ErrorXML(code, message string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<ErrorResponse xmlns="https://mws.amazonservices.com/">
  <Error><Type>Sender</Type><Code>%s</Code><Message>%s</Message></Error>
  <RequestID>req-error</RequestID>
</ErrorResponse>`, code, message)
}
