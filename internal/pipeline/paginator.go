package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// pageState is the paginator lifecycle.
type pageState int

const (
	stateIdle pageState = iota
	stateAwaitingPage
	stateAccumulating
	stateDone
)

func (s pageState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateAwaitingPage:
		return "AwaitingPage"
	case stateAccumulating:
		return "Accumulating"
	case stateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

var errInvalidTransition = errors.New("invalid paginator transition")

// paginator accumulates the pages of one call. It lives for a single call
// and is never shared.
type paginator struct {
	state pageState
	auto  bool

	items     []*mws.Node
	pages     int
	last      *mws.Node
	action    string
	nextToken string
}

func newPaginator(auto bool) *paginator {
	return &paginator{state: stateIdle, auto: auto}
}

// begin marks a request as in flight.
func (p *paginator) begin() error {
	if p.state != stateIdle && p.state != stateAccumulating {
		return fmt.Errorf("%w: %s -> %s", errInvalidTransition, p.state, stateAwaitingPage)
	}

	p.state = stateAwaitingPage

	return nil
}

// receive folds a page into the accumulated items and returns the token of
// the next page to fetch, or "" once the call is done.
func (p *paginator) receive(desc *mws.OperationDescriptor, tree *mws.Node) (string, error) {
	if p.state != stateAwaitingPage {
		return "", fmt.Errorf("%w: %s -> %s", errInvalidTransition, p.state, stateAccumulating)
	}

	p.state = stateAccumulating
	p.pages++
	p.last = tree
	p.action = desc.Action

	result := tree.Get(desc.ResultKey())
	p.items = append(p.items, extractItems(desc, result)...)
	p.nextToken = continuationToken(result)

	if !p.auto || p.nextToken == "" {
		p.state = stateDone

		return "", nil
	}

	return p.nextToken, nil
}

// result builds the call result. Without auto-pagination Items holds the
// first page's collection and NextToken is left for manual follow-up.
func (p *paginator) result() *mws.Result {
	return &mws.Result{
		Operation: p.action,
		Response:  p.last,
		Items:     p.items,
		NextToken: p.nextToken,
		Pages:     p.pages,
	}
}

func extractItems(desc *mws.OperationDescriptor, result *mws.Node) []*mws.Node {
	node := result
	if desc.ResultContainerKey != "" {
		node = node.Get(desc.ResultContainerKey)
	}

	if desc.ResultItemKey != "" {
		node = node.Get(desc.ResultItemKey)
	}

	if isEmpty(node) {
		return nil
	}

	return mws.AsList(node)
}

func isEmpty(n *mws.Node) bool {
	return n == nil || (n.Kind == mws.KindMapping && n.Len() == 0 && n.Text == "" && len(n.Attrs) == 0)
}

// continuationToken returns the NextToken of a result unless HasNext says
// there is no next page. Leaves keep their raw text, so surrounding
// whitespace from pretty-printed responses is dropped here.
func continuationToken(result *mws.Node) string {
	if strings.EqualFold(strings.TrimSpace(result.Value("HasNext")), "false") {
		return ""
	}

	return strings.TrimSpace(result.Value("NextToken"))
}
