package service

import (
	"fmt"

	"go.uber.org/zap"

	"vela/domain/book"
	"vela/infra/sequence"
	"vela/infra/wal"
)

// ReplayFromWAL rebuilds the book by re-applying the journal in sequence
// order, then fast-forwards the sequencer past everything replayed. Commands
// go straight to the book: replay must not journal again.
func ReplayFromWAL(
	dir string,
	b *book.Book,
	seq *sequence.Sequencer,
	log *zap.Logger,
) error {
	replayed := 0
	lastSeq, err := wal.Replay(dir, func(rec *wal.Record) error {
		replayed++
		switch rec.Type {
		case wal.RecordPlace:
			in, err := wal.DecodePlaceIntent(rec.Data)
			if err != nil {
				return err
			}
			o, err := book.NewOrder(in.ID, in.Side, in.Type, in.Price, in.Qty)
			if err != nil {
				// The journal holds accepted commands only; an invalid
				// placement means the journal itself is damaged.
				return fmt.Errorf("replay seq %d: %w", rec.Seq, err)
			}
			_, err = b.Add(o)
			return err
		case wal.RecordCancel:
			in, err := wal.DecodeCancelIntent(rec.Data)
			if err != nil {
				return err
			}
			b.Cancel(in.ID)
			return nil
		case wal.RecordModify:
			in, err := wal.DecodeModifyIntent(rec.Data)
			if err != nil {
				return err
			}
			_, err = b.Modify(book.NewOrderModify(in.ID, in.Side, in.Price, in.Qty))
			return err
		case wal.RecordClear:
			b.Clear()
			return nil
		default:
			return fmt.Errorf("replay seq %d: unknown record type %d", rec.Seq, rec.Type)
		}
	})
	if err != nil {
		return err
	}

	// Resume after the last journaled command. Trade publications share the
	// sequence space; the caller must also advance past the outbox maximum.
	seq.Reset(lastSeq)

	log.Info("journal replayed",
		zap.Int("records", replayed),
		zap.Uint64("last_seq", lastSeq),
		zap.Int("resting_orders", b.Size()),
	)
	return nil
}
