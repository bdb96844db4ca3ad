// Package hooking provides generic before/after instrumentation points
// that the Coordinator invokes as it processes a step, independent of
// any one observation backend.
package hooking

// Pos identifies a location in the Coordinator's processing pipeline
// where hooks may be invoked.
type Pos struct {
	Name string
}

// Well-known hook positions. Domains may define additional ones.
var (
	PosBeforeStep        = &Pos{Name: "BeforeStep"}
	PosAfterStep         = &Pos{Name: "AfterStep"}
	PosBeforeTransition  = &Pos{Name: "BeforeTransition"}
	PosAfterTransition   = &Pos{Name: "AfterTransition"}
	PosBeforeObservation = &Pos{Name: "BeforeObservation"}
	PosAfterObservation  = &Pos{Name: "AfterObservation"}
)

// Ctx carries the context of one hook invocation.
type Ctx struct {
	Domain Hookable
	Pos    *Pos
	Item   interface{}
	Detail interface{}
}

// Hookable is implemented by anything that accepts Hooks.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
}

// Hook is invoked by a Hookable at the positions it chooses to report.
type Hook interface {
	Func(ctx Ctx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx Ctx)

// Func implements Hook.
func (f HookFunc) Func(ctx Ctx) {
	f(ctx)
}

// Base is an embeddable implementation of Hookable.
type Base struct {
	hooks []Hook
}

// AcceptHook registers a hook to be invoked at every InvokeHook call.
func (b *Base) AcceptHook(hook Hook) {
	b.hooks = append(b.hooks, hook)
}

// NumHooks returns how many hooks are currently registered. Callers use
// this to skip building a Ctx (and whatever Item/Detail it would carry)
// when nobody is listening.
func (b *Base) NumHooks() int {
	return len(b.hooks)
}

// InvokeHook runs every registered hook with ctx.
func (b *Base) InvokeHook(ctx Ctx) {
	for _, h := range b.hooks {
		h.Func(ctx)
	}
}
