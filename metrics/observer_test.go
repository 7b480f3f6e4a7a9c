package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/domain/book"
)

func TestObserverCountsOperations(t *testing.T) {
	obs := NewObserver("vela")

	b := book.NewBook()
	b.SetObserver(obs.Hook())

	o, err := book.NewOrder(1, book.Buy, book.GoodTillCancel, 100, 5)
	require.NoError(t, err)
	_, err = b.Add(o)
	require.NoError(t, err)
	b.Cancel(1)
	b.Cancel(1)
	b.Size()

	rec := httptest.NewRecorder()
	obs.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `vela_book_operations_total{op="AddOrder_Success"} 1`)
	assert.Contains(t, body, `vela_book_operations_total{op="CancelOrder_Success"} 1`)
	assert.Contains(t, body, `vela_book_operations_total{op="CancelOrder_NotFound"} 1`)
	assert.Contains(t, body, `vela_book_operations_total{op="Size"} 1`)
	assert.True(t, strings.Contains(body, `op="MatchOrders"`))
}
