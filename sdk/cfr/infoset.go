package cfr

import (
	"sync/atomic"
	"unsafe"

	"github.com/lox/cfrsolver/internal/phash"
)

// maxActionSlots bounds the number of actions any single information set may
// carry. It is a physical layout constant (every entry is allocated at this
// width regardless of how many actions a particular info set actually uses)
// chosen generously for the Kuhn/Leduc/RPS scale games this core targets; an
// info set with more actions than this is rejected at table-build time.
const maxActionSlots = 8

const cacheLineBytes = 64

// infoSetEntry holds one player information set's regrets and cumulative
// strategy. The layout is padded to a whole number of cache lines so that
// concurrent updates to distinct entries never false-share: busy+n occupy the
// first 8 bytes, regrets and cumulative strategy share the following
// 2*maxActionSlots float64 slots (first half regrets, second half cumulative
// strategy), and the remainder is unused padding.
type infoSetEntry struct {
	busy uint32 // spin-lock: 0 free, 1 held
	n    uint32 // action count for this entry; written once before solving begins
	data [2 * maxActionSlots]float64
	_    [cacheLinePad]byte
}

// cacheLinePad brings infoSetEntry up to a multiple of cacheLineBytes.
// unsafeEntrySize = 4 (busy) + 4 (n) + 2*maxActionSlots*8 (data), which for
// maxActionSlots=8 is 136 bytes; the next multiple of 64 is 192.
const unsafeEntrySize = 4 + 4 + 2*maxActionSlots*8
const cacheLinePad = (cacheLineBytes - unsafeEntrySize%cacheLineBytes) % cacheLineBytes

func (e *infoSetEntry) lock() {
	for {
		if atomic.LoadUint32(&e.busy) == 0 && atomic.CompareAndSwapUint32(&e.busy, 0, 1) {
			return
		}
	}
}

func (e *infoSetEntry) unlock() {
	atomic.StoreUint32(&e.busy, 0)
}

// newAlignedEntries allocates n infoSetEntry values such that the first
// entry's address is a multiple of cacheLineBytes. Because each entry's size
// is itself a multiple of cacheLineBytes, every subsequent entry then also
// starts on a cache-line boundary, so no two entries ever share a line. The
// backing byte slice is kept alive by the returned slice's interior pointer.
func newAlignedEntries(n int) []infoSetEntry {
	if n == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(infoSetEntry{}))
	buf := make([]byte, n*size+cacheLineBytes)
	base := uintptr(unsafe.Pointer(&buf[0]))
	aligned := (base + cacheLineBytes - 1) &^ (cacheLineBytes - 1)
	offset := aligned - base
	ptr := unsafe.Pointer(&buf[offset])
	return unsafe.Slice((*infoSetEntry)(ptr), n)
}

// InfoSetTable gives every distinct player information set a single mutable
// slot for regrets and cumulative strategy. Readers and writers coordinate
// per-entry via a spin lock rather than a single global mutex, so unrelated
// info sets never contend.
type InfoSetTable struct {
	entries []infoSetEntry
	slots   *phash.Table
	// nodeSlot maps a tree node index to its entry in entries, or -1 for
	// chance/terminal nodes which carry no regret state.
	nodeSlot []int32
	// clampOnWrite selects the CFR+ discipline: regrets are floored at 0 on
	// every accumulate. Every variant (CFR+ or not) takes every entry's lock
	// for both the accumulate and the current-strategy read; clampOnWrite
	// only changes what happens to the regret value once the lock is held.
	clampOnWrite bool
}

// BuildInfoSetTable walks tree once to discover the distinct player info sets
// it contains, builds a perfect hash over their keys, and allocates one
// cache-line-isolated entry per info set. clampOnWrite selects the CFR+
// clamp-on-write rule described on InfoSetTable.
func BuildInfoSetTable(tree *Tree, clampOnWrite bool) (*InfoSetTable, error) {
	b := phash.NewBuilder()
	seen := make(map[string]bool)
	actionCount := make(map[string]int)

	for node := 0; node < tree.NumNodes(); node++ {
		if tree.IsTerminal(node) || tree.Kind(node) == Chance {
			continue
		}
		key := tree.InfoSetKey(node)
		ks := string(key)
		if !seen[ks] {
			seen[ks] = true
			b.Add(key)
			actionCount[ks] = tree.NumChildren(node)
		}
	}

	nodeSlot := make([]int32, tree.NumNodes())
	for i := range nodeSlot {
		nodeSlot[i] = -1
	}

	if len(seen) == 0 {
		return &InfoSetTable{nodeSlot: nodeSlot, clampOnWrite: clampOnWrite}, nil
	}

	table, err := b.Build()
	if err != nil {
		return nil, err
	}

	entries := newAlignedEntries(table.Len())
	for ks := range seen {
		n := actionCount[ks]
		if n > maxActionSlots {
			violate("BuildInfoSetTable", "info set has %d actions, exceeds maxActionSlots=%d", n, maxActionSlots)
		}
		slot := table.Lookup([]byte(ks))
		entries[slot].n = uint32(n)
	}

	for node := 0; node < tree.NumNodes(); node++ {
		if tree.IsTerminal(node) || tree.Kind(node) == Chance {
			continue
		}
		nodeSlot[node] = int32(table.Lookup(tree.InfoSetKey(node)))
	}

	return &InfoSetTable{
		entries:      entries,
		slots:        table,
		nodeSlot:     nodeSlot,
		clampOnWrite: clampOnWrite,
	}, nil
}

// Size returns the number of distinct player information sets tracked.
func (t *InfoSetTable) Size() int { return len(t.entries) }

// SlotFor returns the entry slot backing node, or -1 if node is a chance or
// terminal node.
func (t *InfoSetTable) SlotFor(node int) int {
	return int(t.nodeSlot[node])
}

// CurrentStrategy applies Regret Matching to slot's regrets: clamp each to
// max(R[a],0) and normalize by the positive sum, falling back to uniform if
// every regret is non-positive. The read is always taken under the entry's
// lock, for every variant, not just CFR+: the critical section is already
// O(fan_out), so there is no performance case for a relaxed read path on the
// variants that don't clamp on write, and a single locking discipline across
// CurrentStrategy/Accumulate/AverageStrategy is easier to reason about than
// two.
func (t *InfoSetTable) CurrentStrategy(slot int, out []float64) {
	e := &t.entries[slot]
	n := int(e.n)

	e.lock()
	regrets := e.data[:n]
	total := 0.0
	for i := 0; i < n; i++ {
		r := regrets[i]
		if r < 0 {
			r = 0
		}
		out[i] = r
		total += r
	}
	e.unlock()

	if total <= 0 {
		uniform := 1.0 / float64(n)
		for i := 0; i < n; i++ {
			out[i] = uniform
		}
		return
	}
	for i := 0; i < n; i++ {
		out[i] /= total
	}
}

// Accumulate adds regretDelta and strategyDelta element-wise into slot's
// regrets and cumulative strategy under the entry's spin lock. Under the
// CFR+ discipline, regrets are floored at 0 immediately after the add so
// R[a] >= 0 holds at every point a reader can observe the vector.
func (t *InfoSetTable) Accumulate(slot int, regretDelta, strategyDelta []float64) {
	e := &t.entries[slot]
	n := int(e.n)
	regrets := e.data[:n]
	strategies := e.data[maxActionSlots : maxActionSlots+n]

	e.lock()
	for i := 0; i < n; i++ {
		regrets[i] += regretDelta[i]
		if t.clampOnWrite && regrets[i] < 0 {
			regrets[i] = 0
		}
		strategies[i] += strategyDelta[i]
	}
	e.unlock()
}

// AverageStrategy normalizes slot's cumulative strategy, falling back to
// uniform when the sum is zero (an info set never visited by a strategy
// update).
func (t *InfoSetTable) AverageStrategy(slot int, out []float64) {
	e := &t.entries[slot]
	n := int(e.n)

	e.lock()
	strategies := e.data[maxActionSlots : maxActionSlots+n]
	total := 0.0
	for i := 0; i < n; i++ {
		out[i] = strategies[i]
		total += strategies[i]
	}
	e.unlock()

	if total <= 0 {
		uniform := 1.0 / float64(n)
		for i := 0; i < n; i++ {
			out[i] = uniform
		}
		return
	}
	for i := 0; i < n; i++ {
		out[i] /= total
	}
}

// ActionCount returns the number of actions recorded for slot.
func (t *InfoSetTable) ActionCount(slot int) int {
	return int(t.entries[slot].n)
}
