package intake

import (
	"encoding/json"
	"fmt"

	"vela/domain/book"
)

// Command is one JSON order command consumed from the command topic.
//
//	{"action":"place","id":7,"side":"buy","type":"gtc","price":100,"qty":5}
//	{"action":"cancel","id":7}
//	{"action":"modify","id":7,"side":"buy","price":101,"qty":5}
//	{"action":"clear"}
type Command struct {
	Action string        `json:"action"`
	ID     book.OrderID  `json:"id"`
	Side   string        `json:"side"`
	Type   string        `json:"type"`
	Price  book.Price    `json:"price"`
	Qty    book.Quantity `json:"qty"`
}

const (
	ActionPlace  = "place"
	ActionCancel = "cancel"
	ActionModify = "modify"
	ActionClear  = "clear"
)

func ParseCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("intake: bad command: %w", err)
	}
	switch c.Action {
	case ActionPlace, ActionCancel, ActionModify, ActionClear:
		return c, nil
	default:
		return Command{}, fmt.Errorf("intake: unknown action %q", c.Action)
	}
}

// ParseSide maps the wire spelling to a book side.
func ParseSide(s string) (book.Side, error) {
	switch s {
	case "buy", "bid":
		return book.Buy, nil
	case "sell", "ask":
		return book.Sell, nil
	default:
		return 0, fmt.Errorf("intake: unknown side %q", s)
	}
}

// ParseOrderType maps the wire spelling to an order type.
func ParseOrderType(s string) (book.OrderType, error) {
	switch s {
	case "gtc", "":
		return book.GoodTillCancel, nil
	case "ioc":
		return book.ImmediateOrCancel, nil
	case "fok":
		return book.FillOrKill, nil
	default:
		return 0, fmt.Errorf("intake: unknown order type %q", s)
	}
}
