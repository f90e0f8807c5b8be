package client

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/internal/feed"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// maxStatusLookups bounds concurrent GetFeedSubmissionList calls in Statuses.
const maxStatusLookups = 2

// FeedsClient implements mws.FeedsClient.
type FeedsClient struct {
	caller mws.Caller
	creds  mws.Credentials
}

// NewFeedsClient creates a new feeds client.
func NewFeedsClient(caller mws.Caller, creds mws.Credentials) *FeedsClient {
	return &FeedsClient{
		caller: caller,
		creds:  creds,
	}
}

// Submit implements mws.FeedsClient.Submit.
func (c *FeedsClient) Submit(ctx context.Context, feedType string, payload []byte, options *mws.SubmitFeedOptions) (*mws.FeedSubmission, error) {
	if options == nil {
		options = &mws.SubmitFeedOptions{}
	}

	if options.DryRun {
		return &mws.FeedSubmission{Payload: payload}, nil
	}

	marketplaces := options.Marketplaces
	if len(marketplaces) == 0 {
		marketplaces = []string{c.creds.MarketplaceID}
	}

	params := mws.NewParams().
		Set("FeedType", feedType).
		Set("PurgeAndReplace", strconv.FormatBool(options.PurgeAndReplace)).
		Set("Merchant", c.creds.SellerID).
		WithList("MarketplaceIdList.Id", marketplaces...)

	result, err := c.caller.Call(ctx, "SubmitFeed", params, &mws.CallOptions{Body: payload})
	if err != nil {
		return nil, fmt.Errorf("submitting %s feed: %w", feedType, err)
	}

	return &mws.FeedSubmission{
		Info:    result.Payload().Get("FeedSubmissionInfo"),
		Payload: payload,
	}, nil
}

// SubmitMessages implements mws.FeedsClient.SubmitMessages. The messages are
// wrapped in an envelope addressed to the configured seller.
func (c *FeedsClient) SubmitMessages(
	ctx context.Context, feedType, messageType string, messages []*mws.Node, options *mws.SubmitFeedOptions,
) (*mws.FeedSubmission, error) {
	payload, err := feed.EncodeEnvelope(c.creds.SellerID, messageType, messages)
	if err != nil {
		return nil, fmt.Errorf("encoding %s feed: %w", feedType, err)
	}

	return c.Submit(ctx, feedType, payload, options)
}

// SubmissionList implements mws.FeedsClient.SubmissionList.
func (c *FeedsClient) SubmissionList(ctx context.Context, submissionIDs []string) ([]*mws.Node, error) {
	err := checkLimit("GetFeedSubmissionList", len(submissionIDs), constants.MaxListIdentifiers)
	if err != nil {
		return nil, err
	}

	params := mws.NewParams().
		Set("MaxCount", strconv.Itoa(constants.MaxListIdentifiers)).
		WithList("FeedSubmissionIdList.Id", submissionIDs...)

	result, err := c.caller.Call(ctx, "GetFeedSubmissionList", params, nil)
	if err != nil {
		return nil, fmt.Errorf("listing feed submissions: %w", err)
	}

	return nonNil(result.Items), nil
}

// SubmissionResult implements mws.FeedsClient.SubmissionResult. The
// processing report is returned when present, otherwise the whole document.
func (c *FeedsClient) SubmissionResult(ctx context.Context, submissionID string) (*mws.Node, error) {
	params := mws.NewParams().Set("FeedSubmissionId", submissionID)

	result, err := c.caller.Call(ctx, "GetFeedSubmissionResult", params, nil)
	if err != nil {
		return nil, fmt.Errorf("getting result of feed submission %s: %w", submissionID, err)
	}

	if report := result.Response.Get("Message", "ProcessingReport"); report != nil {
		return report, nil
	}

	if result.Response == nil {
		return mws.NewScalar(result.Text()), nil
	}

	return result.Response, nil
}

// Statuses implements mws.FeedsClient.Statuses, mapping each submission id to
// its FeedProcessingStatus. Ids are looked up in batches of 100.
func (c *FeedsClient) Statuses(ctx context.Context, submissionIDs []string) (map[string]string, error) {
	var mu sync.Mutex

	statuses := make(map[string]string, len(submissionIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxStatusLookups)

	for _, batch := range chunk(dedupe(submissionIDs), constants.MaxListIdentifiers) {
		g.Go(func() error {
			infos, err := c.SubmissionList(ctx, batch)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()

			for _, info := range infos {
				statuses[info.Value("FeedSubmissionId")] = info.Value("FeedProcessingStatus")
			}

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("getting feed statuses: %w", err)
	}

	return statuses, nil
}

// DeleteProductsBySKU implements mws.FeedsClient.DeleteProductsBySKU.
func (c *FeedsClient) DeleteProductsBySKU(ctx context.Context, skus []string, options *mws.SubmitFeedOptions) (*mws.FeedSubmission, error) {
	return c.SubmitMessages(ctx, mws.FeedTypeProductData, feed.MessageTypeProduct, feed.DeleteMessages(skus), options)
}

// UpdateStock implements mws.FeedsClient.UpdateStock.
func (c *FeedsClient) UpdateStock(ctx context.Context, updates []mws.StockUpdate, options *mws.SubmitFeedOptions) (*mws.FeedSubmission, error) {
	return c.SubmitMessages(ctx, mws.FeedTypeInventoryAvailability, feed.MessageTypeInventory, feed.StockMessages(updates), options)
}

// UpdatePrice implements mws.FeedsClient.UpdatePrice.
func (c *FeedsClient) UpdatePrice(ctx context.Context, updates []mws.PriceUpdate, options *mws.SubmitFeedOptions) (*mws.FeedSubmission, error) {
	return c.SubmitMessages(ctx, mws.FeedTypeProductPricing, feed.MessageTypePrice, feed.PriceMessages(updates), options)
}

// PostProducts implements mws.FeedsClient.PostProducts. Every row is validated
// before anything is sent.
func (c *FeedsClient) PostProducts(ctx context.Context, products []*mws.Product, options *mws.SubmitFeedOptions) (*mws.FeedSubmission, error) {
	payload, err := feed.EncodeProducts(products)
	if err != nil {
		return nil, fmt.Errorf("encoding listings feed: %w", err)
	}

	return c.Submit(ctx, mws.FeedTypeFlatFileListings, payload, options)
}
