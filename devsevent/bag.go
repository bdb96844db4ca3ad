package devsevent

import "github.com/sarchlab/devscore/devstime"

// Bag is the set of events addressed to one Simulator at one time
// instant: at most one pending InternalEvent, zero or more
// ExternalEvents, zero or more RequestEvents.
type Bag struct {
	Internal  *InternalEvent
	Externals []ExternalEvent
	Requests  []RequestEvent
}

// Empty reports whether the bag has nothing left to drain.
func (b *Bag) Empty() bool {
	return b.Internal == nil && len(b.Externals) == 0 && len(b.Requests) == 0
}

// HasInternal reports whether the bag still has a pending internal event.
func (b *Bag) HasInternal() bool {
	return b.Internal != nil
}

// HasExternals reports whether the bag still has pending external events.
func (b *Bag) HasExternals() bool {
	return len(b.Externals) > 0
}

// HasRequests reports whether the bag still has pending request events.
func (b *Bag) HasRequests() bool {
	return len(b.Requests) > 0
}

// TakeInternal removes and returns the pending internal event. It panics
// if none is pending; callers must check HasInternal first.
func (b *Bag) TakeInternal() InternalEvent {
	if b.Internal == nil {
		panic("devsevent: TakeInternal on a bag with no internal event")
	}

	e := *b.Internal
	b.Internal = nil

	return e
}

// TakeExternals removes and returns all pending external events.
func (b *Bag) TakeExternals() []ExternalEvent {
	es := b.Externals
	b.Externals = nil

	return es
}

// TakeRequests removes and returns all pending request events.
func (b *Bag) TakeRequests() []RequestEvent {
	rs := b.Requests
	b.Requests = nil

	return rs
}

// PushRequest appends a request event to the bag; CompleteBag.AddRequest
// uses it while a CompleteBag is being assembled.
func (b *Bag) PushRequest(r RequestEvent) {
	b.Requests = append(b.Requests, r)
}

// PushExternal appends an external event to the bag;
// CompleteBag.AddExternal uses it while a CompleteBag is being assembled.
func (b *Bag) PushExternal(e ExternalEvent) {
	b.Externals = append(b.Externals, e)
}

// CompleteBag is every per-simulator Bag whose scheduled time equals the
// EventTable's current minimum, plus the time-equal observation queue.
// Order is the stable tie-break: simulators are visited in the order
// their entry was first created in this CompleteBag (registration
// order).
type CompleteBag struct {
	Time         devstime.Time
	order        []SimulatorID
	bags         map[SimulatorID]*Bag
	Observations []ObservationEvent
}

// NewCompleteBag creates an empty CompleteBag.
func NewCompleteBag() *CompleteBag {
	return &CompleteBag{
		bags: make(map[SimulatorID]*Bag),
	}
}

// Empty reports whether there is nothing left to process: no per-model
// bags and no observations.
func (c *CompleteBag) Empty() bool {
	return len(c.order) == 0 && len(c.Observations) == 0
}

// EmptyBags reports whether every per-model bag has fully drained.
// Observations are processed separately, after transitions.
func (c *CompleteBag) EmptyBags() bool {
	return len(c.order) == 0
}

// bagFor returns (creating if needed) the bag for sim, recording
// registration order on first creation.
func (c *CompleteBag) bagFor(sim SimulatorID) *Bag {
	b, ok := c.bags[sim]
	if !ok {
		b = &Bag{}
		c.bags[sim] = b
		c.order = append(c.order, sim)
	}

	return b
}

// AddInternal registers e's target bag and attaches e as the internal
// event.
func (c *CompleteBag) AddInternal(e InternalEvent) {
	c.bagFor(e.Target).Internal = &e
}

// AddExternal registers e's destination bag and appends e to its
// externals.
func (c *CompleteBag) AddExternal(e ExternalEvent) {
	c.bagFor(e.Dst.Model).PushExternal(e)
}

// AddRequest registers e's destination bag and appends e to its
// requests.
func (c *CompleteBag) AddRequest(e RequestEvent) {
	c.bagFor(e.Dst.Model).PushRequest(e)
}

// Next returns the next non-empty per-simulator bag in registration
// order, and its SimulatorID, removing fully-drained entries from the
// front of the order as it goes. ok is false once every bag is empty.
func (c *CompleteBag) Next() (sim SimulatorID, bag *Bag, ok bool) {
	for len(c.order) > 0 {
		sim = c.order[0]
		bag = c.bags[sim]

		if bag.Empty() {
			c.order = c.order[1:]
			delete(c.bags, sim)

			continue
		}

		return sim, bag, true
	}

	return "", nil, false
}
