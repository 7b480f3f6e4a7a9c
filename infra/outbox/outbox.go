// Package outbox is the durable trade outbox: every execution is stored
// before it is published, survives restarts, and is retried until the broker
// acknowledges it. Keys are big-endian sequence numbers so iteration order is
// publication order.
package outbox

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
)

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

// Entry is one pending publication.
type Entry struct {
	Seq         uint64
	State       State
	Attempts    uint32
	LastAttempt int64
	Payload     []byte
}

// value encoding: [state:1][attempts:4][lastAttempt:8][payload]
func encodeValue(e Entry) []byte {
	buf := make([]byte, 1+4+8+len(e.Payload))
	buf[0] = byte(e.State)
	binary.BigEndian.PutUint32(buf[1:5], e.Attempts)
	binary.BigEndian.PutUint64(buf[5:13], uint64(e.LastAttempt))
	copy(buf[13:], e.Payload)
	return buf
}

func decodeValue(seq uint64, b []byte) (Entry, error) {
	if len(b) < 13 {
		return Entry{}, errors.New("outbox: short entry")
	}
	return Entry{
		Seq:         seq,
		State:       State(b[0]),
		Attempts:    binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte(nil), b[13:]...),
	}, nil
}

func keyFor(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// Outbox is a pebble-backed store of pending publications.
type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// Put stores a new entry. Called on the write path, so it is synchronous:
// a trade is never published unless it was first made durable.
func (o *Outbox) Put(seq uint64, payload []byte) error {
	e := Entry{Seq: seq, State: StateNew, Payload: payload}
	return o.db.Set(keyFor(seq), encodeValue(e), pebble.Sync)
}

// MarkSent bumps the attempt counter before a publish attempt.
func (o *Outbox) MarkSent(seq uint64) error {
	e, err := o.Get(seq)
	if err != nil {
		return err
	}
	e.State = StateSent
	e.Attempts++
	e.LastAttempt = time.Now().UnixNano()
	return o.db.Set(keyFor(seq), encodeValue(e), pebble.Sync)
}

// MarkAcked removes the entry once the broker confirmed it.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

// Get loads one entry.
func (o *Outbox) Get(seq uint64) (Entry, error) {
	v, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return Entry{}, err
	}
	defer closer.Close()
	return decodeValue(seq, v)
}

// MaxSeq returns the highest stored sequence, or zero when empty. The
// sequencer must resume past it: outbox keys share the sequence space with
// journal records.
func (o *Outbox) MaxSeq() (uint64, error) {
	it, err := o.db.NewIter(nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	if !it.Last() {
		return 0, it.Error()
	}
	return binary.BigEndian.Uint64(it.Key()), it.Error()
}

// ScanPending visits every unacked entry in sequence order. The callback's
// error stops the scan and is returned.
func (o *Outbox) ScanPending(fn func(Entry) error) error {
	it, err := o.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		seq := binary.BigEndian.Uint64(it.Key())
		e, err := decodeValue(seq, it.Value())
		if err != nil {
			return err
		}
		if e.State == StateAcked {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return it.Error()
}
