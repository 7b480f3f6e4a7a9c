package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/domain/book"
)

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"action":"place","id":7,"side":"buy","type":"fok","price":-25,"qty":3}`))
	require.NoError(t, err)
	assert.Equal(t, ActionPlace, cmd.Action)
	assert.Equal(t, book.OrderID(7), cmd.ID)
	assert.Equal(t, book.Price(-25), cmd.Price)
	assert.Equal(t, book.Quantity(3), cmd.Qty)

	_, err = ParseCommand([]byte(`{"action":"noop"}`))
	assert.Error(t, err)
	_, err = ParseCommand([]byte(`{not json`))
	assert.Error(t, err)
}

func TestParseSideAndType(t *testing.T) {
	for in, want := range map[string]book.Side{"buy": book.Buy, "bid": book.Buy, "sell": book.Sell, "ask": book.Sell} {
		got, err := ParseSide(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSide("hold")
	assert.Error(t, err)

	for in, want := range map[string]book.OrderType{"gtc": book.GoodTillCancel, "": book.GoodTillCancel, "ioc": book.ImmediateOrCancel, "fok": book.FillOrKill} {
		got, err := ParseOrderType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = ParseOrderType("market")
	assert.Error(t, err)
}
