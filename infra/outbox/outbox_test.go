package outbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutScanAckCycle(t *testing.T) {
	o, err := Open(t.TempDir())
	require.NoError(t, err)
	defer o.Close()

	require.NoError(t, o.Put(3, []byte("three")))
	require.NoError(t, o.Put(1, []byte("one")))
	require.NoError(t, o.Put(2, []byte("two")))

	var seqs []uint64
	require.NoError(t, o.ScanPending(func(e Entry) error {
		seqs = append(seqs, e.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{1, 2, 3}, seqs, "scan must follow sequence order")

	require.NoError(t, o.MarkSent(2))
	e, err := o.Get(2)
	require.NoError(t, err)
	assert.Equal(t, StateSent, e.State)
	assert.Equal(t, uint32(1), e.Attempts)
	assert.Equal(t, []byte("two"), e.Payload)

	require.NoError(t, o.MarkAcked(2))
	seqs = seqs[:0]
	require.NoError(t, o.ScanPending(func(e Entry) error {
		seqs = append(seqs, e.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{1, 3}, seqs)
}

func TestMaxSeq(t *testing.T) {
	o, err := Open(t.TempDir())
	require.NoError(t, err)
	defer o.Close()

	m, err := o.MaxSeq()
	require.NoError(t, err)
	assert.Zero(t, m)

	require.NoError(t, o.Put(9, []byte("x")))
	require.NoError(t, o.Put(4, []byte("y")))
	m, err = o.MaxSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), m)
}

func TestReopenKeepsPending(t *testing.T) {
	dir := t.TempDir()

	o, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, o.Put(1, []byte("p")))
	require.NoError(t, o.Close())

	o, err = Open(dir)
	require.NoError(t, err)
	defer o.Close()

	count := 0
	require.NoError(t, o.ScanPending(func(Entry) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count, "pending entries must survive a restart")
}
