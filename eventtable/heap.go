package eventtable

import (
	"container/heap"

	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
)

// entry is one pending event of any of the three transition kinds
// (internal/external/request) held in the primary heap. Observation
// events live in a separate sub-heap (see observation.go) because they
// must run strictly after transitions at the same time.
type entry struct {
	time  devstime.Time
	seq   uint64 // stable tie-break: insertion order
	kind  devsevent.Kind
	index int // heap.Interface bookkeeping

	internal *devsevent.InternalEvent
	external *devsevent.ExternalEvent
	request  *devsevent.RequestEvent

	// target/source simulators this entry mentions, for DeleteEventsFor.
	mentions []devsevent.SimulatorID
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	// Stable tie-break by insertion order keeps runs reproducible.
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]

	return e
}

var _ = heap.Interface(&entryHeap{})
