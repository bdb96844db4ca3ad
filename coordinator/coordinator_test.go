package coordinator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/coordinator"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devslog"
	"github.com/sarchlab/devscore/devstime"
	"github.com/sarchlab/devscore/factory"
	"github.com/sarchlab/devscore/graph"
	"github.com/sarchlab/devscore/idgen"
	"github.com/sarchlab/devscore/view"
)

var _ = Describe("Coordinator", func() {
	var (
		g  *graph.Graph
		f  *factory.ModelFactory
		co *coordinator.Coordinator
	)

	BeforeEach(func() {
		g = graph.New()
		f = factory.New()
		co = coordinator.New(g, f, idgen.NewSequential(), devslog.Silent())
	})

	Describe("NextTime", func() {
		It("reports infinity before Init and once the table drains", func() {
			Expect(co.NextTime().IsInfinite()).To(BeTrue())
		})
	})

	Context("S1: a single self-scheduling model", func() {
		It("ticks at every period until its time-advance goes infinite", func() {
			ticker := &tickerModel{period: 2, limit: 2}
			Expect(f.AddDynamics("ticker", func(atomicmodel.InitEvents) atomicmodel.Model { return ticker })).To(Succeed())

			id, err := co.RegisterModel(g.Root, "clock", "ticker", nil, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())

			Expect(co.NextTime()).To(Equal(devstime.Time(2)))
			Expect(co.Step()).To(Succeed())
			Expect(co.CurrentTime()).To(Equal(devstime.Time(2)))

			Expect(co.NextTime()).To(Equal(devstime.Time(4)))
			Expect(co.Step()).To(Succeed())
			Expect(co.CurrentTime()).To(Equal(devstime.Time(4)))

			// the second Internal() call hits the limit and returns Infinity
			Expect(co.NextTime().IsInfinite()).To(BeTrue())
			Expect(ticker.ticks).To(Equal(2))
		})
	})

	Context("routing an Output reply through a connection", func() {
		It("delivers it to the connected sink as an External event at the same instant", func() {
			ticker := &tickerModel{period: 1, limit: 1}
			sink := &sinkModel{}

			Expect(f.AddDynamics("ticker", func(atomicmodel.InitEvents) atomicmodel.Model { return ticker })).To(Succeed())
			Expect(f.AddDynamics("sink", func(atomicmodel.InitEvents) atomicmodel.Model { return sink })).To(Succeed())

			_, err := co.RegisterModel(g.Root, "ticker", "ticker", nil, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = co.RegisterModel(g.Root, "sink", "sink", nil, "")
			Expect(err).NotTo(HaveOccurred())

			tickerNode, ok := g.Root.FindChild("ticker")
			Expect(ok).To(BeTrue())
			sinkNode, ok := g.Root.FindChild("sink")
			Expect(ok).To(BeTrue())
			Expect(g.Connect(g.Root, tickerNode, "out", sinkNode, "in")).To(Succeed())

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())

			// pass 1: ticker's internal transition routes the ExternalEvent
			// into the table at the current instant
			Expect(co.Step()).To(Succeed())
			Expect(sink.received).To(BeEmpty())

			// pass 2, same instant: the table hands it to sink
			Expect(co.NextTime()).To(Equal(devstime.Time(1)))
			Expect(co.Step()).To(Succeed())

			Expect(sink.received).To(HaveLen(1))
			Expect(sink.received[0]["ticks"]).To(Equal(0))
			Expect(co.CurrentTime()).To(Equal(devstime.Time(1)))
		})
	})

	Context("S2: a confluent collision between an internal and external event", func() {
		buildCollision := func(policy atomicmodel.Confluence) (*[]string, *coordinator.Coordinator, *graph.Graph, devsevent.SimulatorID) {
			calls := &[]string{}
			source := &tickerModel{period: 1, limit: 1}
			target := &confluentModel{policy: policy, calls: calls, initTA: devstime.Duration(1), finishTA: devstime.Duration(devstime.Infinity)}

			Expect(f.AddDynamics("source", func(atomicmodel.InitEvents) atomicmodel.Model { return source })).To(Succeed())
			Expect(f.AddDynamics("target", func(atomicmodel.InitEvents) atomicmodel.Model { return target })).To(Succeed())

			_, err := co.RegisterModel(g.Root, "source", "source", nil, "")
			Expect(err).NotTo(HaveOccurred())
			targetID, err := co.RegisterModel(g.Root, "target", "target", nil, "")
			Expect(err).NotTo(HaveOccurred())

			srcNode, ok := g.Root.FindChild("source")
			Expect(ok).To(BeTrue())
			dstNode, ok := g.Root.FindChild("target")
			Expect(ok).To(BeTrue())
			Expect(g.Connect(g.Root, srcNode, "out", dstNode, "in")).To(Succeed())

			return calls, co, g, targetID
		}

		It("runs only Internal when Confluent resolves ConfluentInternal", func() {
			calls, co, _, _ := buildCollision(atomicmodel.ConfluentInternal)

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())

			// pass 1: source's own internal fires (alone) and routes an
			// External into target while target's own uncollided first
			// Internal call self-reschedules at the same instant
			Expect(co.Step()).To(Succeed())
			Expect(*calls).To(Equal([]string{"internal"}))

			// pass 2, same instant: target's rescheduled Internal and the
			// routed External are now bagged together — a real collision
			Expect(co.NextTime()).To(Equal(devstime.Time(1)))
			Expect(co.Step()).To(Succeed())

			Expect(*calls).To(Equal([]string{"internal", "internal"}))
			// DropConfluentExternals defaults true: nothing left pending
			Expect(co.NextTime().IsInfinite()).To(BeTrue())
		})

		It("re-enqueues the dropped externals when DropConfluentExternals is false", func() {
			calls, co, _, _ := buildCollision(atomicmodel.ConfluentInternal)
			co.DropConfluentExternals = false

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())
			Expect(co.Step()).To(Succeed())
			Expect(co.Step()).To(Succeed())

			Expect(*calls).To(Equal([]string{"internal", "internal"}))
			// the re-enqueued external is drained on a later Step at the same time
			Expect(co.NextTime()).To(Equal(devstime.Time(1)))

			Expect(co.Step()).To(Succeed())
			Expect(*calls).To(Equal([]string{"internal", "internal", "external"}))
		})

		It("runs only External when Confluent resolves ConfluentExternal", func() {
			calls, co, _, _ := buildCollision(atomicmodel.ConfluentExternal)

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())
			Expect(co.Step()).To(Succeed())
			Expect(co.Step()).To(Succeed())

			Expect(*calls).To(Equal([]string{"internal", "external"}))
		})
	})

	Context("S3: dynamic deletion during an internal transition", func() {
		It("completes the deletion and the victim's own pending internal never dispatches", func() {
			victimRan := false

			exec := &executiveModel{parent: g.Root, victim: "victim"}
			victim := &victimModel{internalRan: &victimRan}

			Expect(f.AddDynamics("exec", func(atomicmodel.InitEvents) atomicmodel.Model { return exec })).To(Succeed())
			Expect(f.AddDynamics("victim", func(atomicmodel.InitEvents) atomicmodel.Model { return victim })).To(Succeed())

			_, err := co.RegisterModel(g.Root, "exec", "exec", nil, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = co.RegisterModel(g.Root, "victim", "victim", nil, "")
			Expect(err).NotTo(HaveOccurred())

			exec.exec = co

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())

			// both models were Init'd with ta=3: exec's internal event was
			// registered first (simOrder), so it pops first in the same bag
			// and deletes "victim" before the victim's own internal dispatches
			Expect(co.NextTime()).To(Equal(devstime.Time(3)))
			Expect(co.Step()).To(Succeed())

			_, stillThere := g.Root.FindChild("victim")
			Expect(stillThere).To(BeFalse())
			Expect(victimRan).To(BeFalse())
		})
	})

	Context("S4: a TimedView's self-scheduling cadence", func() {
		It("re-observes at every period after a subscription", func() {
			ticker := &tickerModel{period: 1, limit: 5}
			Expect(f.AddDynamics("ticker", func(atomicmodel.InitEvents) atomicmodel.Model { return ticker })).To(Succeed())

			id, err := co.RegisterModel(g.Root, "clock", "ticker", nil, "")
			Expect(err).NotTo(HaveOccurred())

			w := &recordingWriter{}
			Expect(co.AddView(view.NewTimedView("cadence", w, 2))).To(Succeed())
			Expect(co.Subscribe(id, "ticks", "cadence")).To(Succeed())

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())

			// Subscribe scheduled the view's own first observation at t=0
			Expect(co.NextTime()).To(Equal(devstime.Time(0)))
			Expect(co.Step()).To(Succeed())
			Expect(co.CurrentTime()).To(Equal(devstime.Time(0)))

			// t=1: ticker's own internal, observation still pending at t=2
			Expect(co.NextTime()).To(Equal(devstime.Time(1)))
			Expect(co.Step()).To(Succeed())

			// t=2: ticker's internal and the view's cadence coincide
			Expect(co.NextTime()).To(Equal(devstime.Time(2)))
			Expect(co.Step()).To(Succeed())

			// the view rescheduled itself one period (2) out, from t=2 to t=4;
			// ticker's own cadence is unaffected and still leads at t=3
			Expect(co.NextTime()).To(Equal(devstime.Time(3)))
		})
	})

	Context("S5: a synchronous request answered within the same instant", func() {
		It("routes the reply back without advancing time", func() {
			requester := &tickerModel{period: 1, limit: 1}
			answerer := &replyModel{answer: 42}
			sink := &sinkModel{}

			Expect(f.AddDynamics("requester", func(atomicmodel.InitEvents) atomicmodel.Model { return requester })).To(Succeed())
			Expect(f.AddDynamics("answerer", func(atomicmodel.InitEvents) atomicmodel.Model { return answerer })).To(Succeed())
			Expect(f.AddDynamics("sink", func(atomicmodel.InitEvents) atomicmodel.Model { return sink })).To(Succeed())

			_, err := co.RegisterModel(g.Root, "requester", "requester", nil, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = co.RegisterModel(g.Root, "answerer", "answerer", nil, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = co.RegisterModel(g.Root, "sink", "sink", nil, "")
			Expect(err).NotTo(HaveOccurred())

			reqNode, ok := g.Root.FindChild("requester")
			Expect(ok).To(BeTrue())
			ansNode, ok := g.Root.FindChild("answerer")
			Expect(ok).To(BeTrue())
			sinkNode, ok := g.Root.FindChild("sink")
			Expect(ok).To(BeTrue())

			Expect(g.ConnectRequest(g.Root, reqNode, "out", ansNode, "ask")).To(Succeed())
			Expect(g.Connect(g.Root, ansNode, "answer", sinkNode, "in")).To(Succeed())

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())
			Expect(co.NextTime()).To(Equal(devstime.Time(1)))

			// t=1, pass 1: requester's Output routes a RequestEvent to answerer
			Expect(co.Step()).To(Succeed())
			Expect(co.CurrentTime()).To(Equal(devstime.Time(1)))
			Expect(sink.received).To(BeEmpty())

			// t=1, pass 2: answerer's Request routes its reply on to sink
			Expect(co.NextTime()).To(Equal(devstime.Time(1)))
			Expect(co.Step()).To(Succeed())
			Expect(sink.received).To(BeEmpty())

			// t=1, pass 3: sink's External delivers the routed reply — the
			// instant never advances past 1 while any of this drains
			Expect(co.NextTime()).To(Equal(devstime.Time(1)))
			Expect(co.Step()).To(Succeed())

			Expect(sink.received).To(HaveLen(1))
			Expect(sink.received[0]["value"]).To(Equal(42))
			Expect(co.CurrentTime()).To(Equal(devstime.Time(1)))
		})
	})

	Context("S6: observation ordering", func() {
		It("fires event views only after the transition that produced the new state", func() {
			ticker := &tickerModel{period: 1, limit: 2}
			Expect(f.AddDynamics("ticker", func(atomicmodel.InitEvents) atomicmodel.Model { return ticker })).To(Succeed())

			id, err := co.RegisterModel(g.Root, "clock", "ticker", nil, "")
			Expect(err).NotTo(HaveOccurred())

			w := &recordingWriter{}
			Expect(co.AddView(view.NewEventView("watch", w))).To(Succeed())
			Expect(co.Subscribe(id, "ticks", "watch")).To(Succeed())

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())
			Expect(co.Step()).To(Succeed())

			// ticker.ticks was incremented by Internal() before the view's
			// Observation() call ran against the *post*-transition state
			Expect(ticker.ticks).To(Equal(1))
			Expect(w.rows).To(Equal([]atomicmodel.Value{atomicmodel.IntValue(1)}))
		})
	})

	Describe("Finish", func() {
		It("runs every live model's Finish callback and closes every view", func() {
			ticker := &tickerModel{period: 1, limit: 1}
			Expect(f.AddDynamics("ticker", func(atomicmodel.InitEvents) atomicmodel.Model { return ticker })).To(Succeed())

			_, err := co.RegisterModel(g.Root, "clock", "ticker", nil, "")
			Expect(err).NotTo(HaveOccurred())

			w := &recordingWriter{}
			Expect(co.AddView(view.NewFinishView("final", w))).To(Succeed())

			Expect(co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{})).To(Succeed())
			Expect(co.Finish()).To(Succeed())

			Expect(w.closed).To(BeTrue())
		})
	})
})
