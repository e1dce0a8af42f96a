package jsonrpc

import (
	"context"
)

type HandlerFunc func(ctx context.Context, args []interface{}) (interface{}, error)

// Handler is a directly-callable procedure implementation together with its
// declared parameter list.
type Handler struct {
	Params []Param
	Fn     HandlerFunc
}

func NewHandler(fn HandlerFunc, params ...Param) *Handler {
	return &Handler{Params: params, Fn: fn}
}

// Receiver exposes handlers by method name. Bound and attached instances
// implement it; shared instances are responsible for their own thread-safety.
type Receiver interface {
	RPCHandler(method string) (*Handler, bool)
}

// MethodMap is the simplest Receiver: a literal method table.
type MethodMap map[string]*Handler

func (m MethodMap) RPCHandler(method string) (*Handler, bool) {
	h, ok := m[method]
	return h, ok
}

// Factory builds a fresh Receiver per resolution, for handlers that must not
// share state across calls.
type Factory func() Receiver

// HandlerRef points at either a factory or a live instance.
type HandlerRef struct {
	factory  Factory
	instance Receiver
}

func FactoryRef(f Factory) HandlerRef {
	return HandlerRef{factory: f}
}

func InstanceRef(r Receiver) HandlerRef {
	return HandlerRef{instance: r}
}

func (ref HandlerRef) receiver() Receiver {
	if ref.factory != nil {
		return ref.factory()
	}

	return ref.instance
}

type binding struct {
	ref    HandlerRef
	method string
}

// Registry maps procedure names to handlers. It must be fully populated
// before dispatching begins; resolution never mutates it, so no locking is
// needed at dispatch time.
type Registry struct {
	handlers map[string]*Handler
	bindings map[string]binding
	attached []Receiver
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]*Handler),
		bindings: make(map[string]binding),
	}
}

// Register stores a directly-callable handler. Last write wins.
func (r *Registry) Register(name string, h *Handler) {
	r.handlers[name] = h
}

// Bind stores a receiver reference under a procedure name. The receiver
// method name defaults to the procedure name when omitted.
func (r *Registry) Bind(name string, ref HandlerRef, method ...string) {
	b := binding{ref: ref, method: name}
	if len(method) > 0 && method[0] != "" {
		b.method = method[0]
	}
	r.bindings[name] = b
}

// Attach adds an instance to the fallback list searched by method name when
// no exact entry matches.
func (r *Registry) Attach(recv Receiver) {
	r.attached = append(r.attached, recv)
}

// Resolve finds the handler for a procedure name. Lookup order: exact
// registration, exact binding, then attached instances in attach order.
func (r *Registry) Resolve(name string) (*Handler, *Error) {
	if h, ok := r.handlers[name]; ok {
		return h, nil
	}

	if b, ok := r.bindings[name]; ok {
		if h, ok := b.ref.receiver().RPCHandler(b.method); ok {
			return h, nil
		}
	}

	for _, recv := range r.attached {
		if h, ok := recv.RPCHandler(name); ok {
			return h, nil
		}
	}

	return nil, NewError(CodeMethodNotFound, "method not found")
}
