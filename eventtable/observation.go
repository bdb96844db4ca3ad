package eventtable

import (
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
)

// obsEntry is one pending ObservationEvent in the observation sub-queue.
type obsEntry struct {
	time devstime.Time
	seq  uint64

	event devsevent.ObservationEvent
}

type obsHeap []*obsEntry

func (h obsHeap) Len() int { return len(h) }

func (h obsHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}

	return h[i].seq < h[j].seq
}

func (h obsHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *obsHeap) Push(x interface{}) {
	*h = append(*h, x.(*obsEntry))
}

func (h *obsHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return e
}
