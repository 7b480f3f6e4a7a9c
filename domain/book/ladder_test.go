package book

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestLadderInsertFindRemove(t *testing.T) {
	lad := newLadder()
	lvl := lad.upsert(100)
	if lvl == nil {
		t.Fatal("upsert failed")
	}
	if got := lad.find(100); got != lvl {
		t.Error("find did not return the same level")
	}

	lad.upsert(200)
	if lad.min().price != 100 {
		t.Error("expected min=100")
	}
	if lad.max().price != 200 {
		t.Error("expected max=200")
	}

	if !lad.remove(100) {
		t.Error("remove failed")
	}
	if lad.find(100) != nil {
		t.Error("expected level 100 to be gone")
	}
}

func TestLadderRemoveNonExistent(t *testing.T) {
	lad := newLadder()
	if lad.remove(123) {
		t.Error("expected false when removing a non-existent level")
	}
}

func TestLadderEmptyMinMax(t *testing.T) {
	lad := newLadder()
	if lad.min() != nil || lad.max() != nil {
		t.Error("expected nil for min/max on empty ladder")
	}
}

func TestLadderUpsertDuplicate(t *testing.T) {
	lad := newLadder()
	l1 := lad.upsert(150)
	l2 := lad.upsert(150)
	if l1 != l2 {
		t.Error("upsert should return the same level for a duplicate price")
	}
}

func TestLadderExtremePrices(t *testing.T) {
	lad := newLadder()
	lad.upsert(math.MinInt32)
	lad.upsert(0)
	lad.upsert(math.MaxInt32)

	if lad.min().price != math.MinInt32 {
		t.Error("expected min=INT32_MIN")
	}
	if lad.max().price != math.MaxInt32 {
		t.Error("expected max=INT32_MAX")
	}
}

func TestLadderOrderedTraversal(t *testing.T) {
	lad := newLadder()
	rng := rand.New(rand.NewSource(7))

	prices := make(map[Price]bool)
	for i := 0; i < 500; i++ {
		p := Price(rng.Int31n(2000) - 1000)
		prices[p] = true
		lad.upsert(p)
	}

	want := make([]Price, 0, len(prices))
	for p := range prices {
		want = append(want, p)
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	var got []Price
	lad.ascend(func(l *level) bool {
		got = append(got, l.price)
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("ascend visited %d levels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ascend out of order at %d: got %d want %d", i, got[i], want[i])
		}
	}

	got = got[:0]
	lad.descend(func(l *level) bool {
		got = append(got, l.price)
		return true
	})
	for i := range want {
		if got[i] != want[len(want)-1-i] {
			t.Fatalf("descend out of order at %d", i)
		}
	}

	// Random deletions keep ordering intact.
	for p := range prices {
		if rng.Intn(2) == 0 {
			lad.remove(p)
			delete(prices, p)
		}
	}
	count := 0
	last := Price(math.MinInt32)
	first := true
	lad.ascend(func(l *level) bool {
		if !first && l.price <= last {
			t.Fatalf("ordering violated after deletes: %d after %d", l.price, last)
		}
		last = l.price
		first = false
		count++
		return true
	})
	if count != len(prices) {
		t.Fatalf("expected %d levels after deletes, got %d", len(prices), count)
	}
}

func TestLevelFIFO(t *testing.T) {
	lvl := &level{price: 100}
	a, _ := NewOrder(1, Buy, GoodTillCancel, 100, 5)
	b, _ := NewOrder(2, Buy, GoodTillCancel, 100, 3)
	c, _ := NewOrder(3, Buy, GoodTillCancel, 100, 2)
	lvl.enqueue(a)
	lvl.enqueue(b)
	lvl.enqueue(c)

	if lvl.head != a || lvl.tail != c {
		t.Fatal("queue must preserve admission order")
	}
	if lvl.totalQty != 10 || lvl.count != 3 {
		t.Fatalf("totals wrong: qty=%d count=%d", lvl.totalQty, lvl.count)
	}

	lvl.unlink(b)
	if lvl.head.next != c || c.prev != a {
		t.Error("middle unlink must relink neighbors")
	}
	if lvl.totalQty != 7 || lvl.count != 2 {
		t.Fatalf("totals wrong after unlink: qty=%d count=%d", lvl.totalQty, lvl.count)
	}

	lvl.unlink(a)
	lvl.unlink(c)
	if !lvl.empty() || lvl.totalQty != 0 {
		t.Error("level should be empty")
	}
}
