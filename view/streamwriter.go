package view

import (
	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
)

// Format discriminates where a StreamWriter's output lands, mirroring
// VLE's vpz::Output::LOCAL / DISTANT split.
type Format int

// The two output formats.
const (
	FormatLocal Format = iota
	FormatDistant
)

// OutputSpec names a StreamWriter configuration: which plugin/backend to
// use, where it writes, and any backend-specific data. One OutputSpec is
// shared by every View bound to it by name.
type OutputSpec struct {
	Name     string
	Format   Format
	Plugin   string
	Location string
	Data     map[string]string
}

// StreamWriter persists observation values, either locally (to disk) or
// remotely (over the network); the wire format is entirely up to the
// concrete writer.
type StreamWriter interface {
	// Open prepares the writer to receive observations. file is a
	// writer-specific name hint (e.g. a table or path prefix); t0 is the
	// simulation's start time.
	Open(plugin, location, file string, data map[string]string, t0 devstime.Time) error

	// Process persists one observed value.
	Process(evt devsevent.ObservationEvent, value atomicmodel.Value) error

	// Close flushes and releases the writer, reporting the simulation's
	// end time.
	Close(tEnd devstime.Time) error
}
