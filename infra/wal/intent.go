package wal

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"

	"vela/domain/book"
)

// ErrCorruptRecord marks a frame or body that fails validation.
var ErrCorruptRecord = errors.New("wal: corrupt record")

// PlaceIntent is the journaled form of an order placement.
//
// Wire format (proto3 semantics, encoded by hand):
//
//	1: id     uint64 (varint)
//	2: side   uint32 (varint)
//	3: type   uint32 (varint)
//	4: price  sint32 (zigzag varint)
//	5: qty    uint32 (varint)
type PlaceIntent struct {
	ID    book.OrderID
	Side  book.Side
	Type  book.OrderType
	Price book.Price
	Qty   book.Quantity
}

// CancelIntent journals a cancellation.
//
//	1: id uint64 (varint)
type CancelIntent struct {
	ID book.OrderID
}

// ModifyIntent journals an amendment.
//
//	1: id    uint64 (varint)
//	2: side  uint32 (varint)
//	4: price sint32 (zigzag varint)
//	5: qty   uint32 (varint)
type ModifyIntent struct {
	ID    book.OrderID
	Side  book.Side
	Price book.Price
	Qty   book.Quantity
}

func (in PlaceIntent) Encode() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, in.ID)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(in.Side))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(in.Type))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(in.Price)))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(in.Qty))
	return b
}

func DecodePlaceIntent(data []byte) (PlaceIntent, error) {
	var in PlaceIntent
	err := eachField(data, func(num protowire.Number, v uint64) {
		switch num {
		case 1:
			in.ID = v
		case 2:
			in.Side = book.Side(v)
		case 3:
			in.Type = book.OrderType(v)
		case 4:
			in.Price = book.Price(protowire.DecodeZigZag(v))
		case 5:
			in.Qty = book.Quantity(v)
		}
	})
	return in, err
}

func (in CancelIntent) Encode() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, in.ID)
	return b
}

func DecodeCancelIntent(data []byte) (CancelIntent, error) {
	var in CancelIntent
	err := eachField(data, func(num protowire.Number, v uint64) {
		if num == 1 {
			in.ID = v
		}
	})
	return in, err
}

func (in ModifyIntent) Encode() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, in.ID)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(in.Side))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(in.Price)))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(in.Qty))
	return b
}

func DecodeModifyIntent(data []byte) (ModifyIntent, error) {
	var in ModifyIntent
	err := eachField(data, func(num protowire.Number, v uint64) {
		switch num {
		case 1:
			in.ID = v
		case 2:
			in.Side = book.Side(v)
		case 4:
			in.Price = book.Price(protowire.DecodeZigZag(v))
		case 5:
			in.Qty = book.Quantity(v)
		}
	})
	return in, err
}

// eachField walks a body of varint-only fields. Unknown numbers are skipped;
// non-varint wire types mean the record is not ours.
func eachField(data []byte, visit func(protowire.Number, uint64)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return ErrCorruptRecord
		}
		data = data[n:]
		if typ != protowire.VarintType {
			return ErrCorruptRecord
		}
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return ErrCorruptRecord
		}
		data = data[n:]
		visit(num, v)
	}
	return nil
}
