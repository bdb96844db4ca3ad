// Package idgen generates the identifiers used to tell simulators, events
// and trace rows apart. The strategy is pluggable: a sequential generator
// gives reproducible, diffable IDs across runs of the same project (what
// the invariant/round-trip tests in this repo rely on); an xid-based
// generator, which the CLI driver uses, gives globally unique IDs suitable
// for stitching together traces collected from several independent runs.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces identifiers on demand.
type Generator interface {
	Generate() string
}

// NewSequential returns a Generator that yields "1", "2", "3", ... in
// allocation order. Two runs that perform the same sequence of creations
// get identical IDs, which is what makes Coordinator runs reproducible
// and comparable.
func NewSequential() Generator {
	return &sequentialGenerator{}
}

type sequentialGenerator struct {
	next uint64
}

func (g *sequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.next, 1)
	return strconv.FormatUint(n, 10)
}

// NewXID returns a Generator backed by github.com/rs/xid, producing
// globally unique, sortable IDs. Use this when traces from multiple
// coordinator runs (e.g. distributed batch experiments) are merged later
// and a purely sequential ID would collide across runs.
func NewXID() Generator {
	return xidGenerator{}
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
