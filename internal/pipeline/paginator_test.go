package pipeline

import (
	"testing"

	"github.com/fivetwenty-io/mws/pkg/mws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(action, token string, ids ...string) *mws.Node {
	orders := mws.NewMapping()
	items := make([]*mws.Node, len(ids))

	for i, id := range ids {
		items[i] = mws.NewMapping().Set("AmazonOrderId", mws.NewScalar(id))
	}

	switch len(items) {
	case 0:
	case 1:
		orders.Set("Order", items[0])
	default:
		orders.Set("Order", mws.NewSequence(items...))
	}

	result := mws.NewMapping().Set("Orders", orders)
	if token != "" {
		result.Set("NextToken", mws.NewScalar(token))
	}

	return mws.NewMapping().Set(action+"Result", result)
}

func TestPaginator_StateMachine(t *testing.T) {
	t.Parallel()

	desc := &mws.OperationDescriptor{
		Name: "ListOrders", Action: "ListOrders",
		ResultContainerKey: "Orders", ResultItemKey: "Order",
	}
	next := &mws.OperationDescriptor{
		Name: "ListOrdersByNextToken", Action: "ListOrdersByNextToken",
		ResultContainerKey: "Orders", ResultItemKey: "Order",
	}

	p := newPaginator(true)
	assert.Equal(t, stateIdle, p.state)

	_, err := p.receive(desc, page("ListOrders", ""))
	require.ErrorIs(t, err, errInvalidTransition, "a page cannot arrive before a request")

	require.NoError(t, p.begin())
	assert.Equal(t, stateAwaitingPage, p.state)
	require.ErrorIs(t, p.begin(), errInvalidTransition, "one request in flight at a time")

	token, err := p.receive(desc, page("ListOrders", "t1", "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
	assert.Equal(t, stateAccumulating, p.state)

	require.NoError(t, p.begin())
	token, err = p.receive(next, page("ListOrdersByNextToken", "", "c"))
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, stateDone, p.state)

	require.ErrorIs(t, p.begin(), errInvalidTransition)

	result := p.result()
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, "ListOrdersByNextToken", result.Operation)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "c", result.Items[2].Value("AmazonOrderId"))
}

func TestContinuationToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		hasNext string
		want    string
	}{
		{name: "plain token", token: "abc", want: "abc"},
		{name: "pretty-printed token", token: "\n    abc\n  ", hasNext: " true ", want: "abc"},
		{name: "has next false", token: "abc", hasNext: "false"},
		{name: "padded has next false", token: "abc", hasNext: "\n false \n"},
		{name: "blank token", token: "  \n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := mws.NewMapping().Set("NextToken", mws.NewScalar(tt.token))
			if tt.hasNext != "" {
				result.Set("HasNext", mws.NewScalar(tt.hasNext))
			}

			assert.Equal(t, tt.want, continuationToken(result))
		})
	}
}

func TestExtractItems_WholeResult(t *testing.T) {
	t.Parallel()

	desc := &mws.OperationDescriptor{Action: "GetOrder"}
	result := mws.NewMapping().Set("Orders", mws.NewMapping())

	items := extractItems(desc, result)
	require.Len(t, items, 1)
	assert.Same(t, result, items[0])

	assert.Empty(t, extractItems(desc, nil))
}

func TestPageState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Idle", stateIdle.String())
	assert.Equal(t, "AwaitingPage", stateAwaitingPage.String())
	assert.Equal(t, "Accumulating", stateAccumulating.String())
	assert.Equal(t, "Done", stateDone.String())
}
