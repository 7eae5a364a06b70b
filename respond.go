package multicast

import (
	"context"
	"reflect"

	"github.com/tailored-agentic-units/multicast/call"
)

// Handler receives dispatched calls as typed descriptors instead of
// through the reflective method-set path. The delegate's construction
// context is passed through to every delivery.
type Handler interface {
	HandleCall(ctx context.Context, c *call.Call)
}

// Responder narrows which selectors an observer receives. A Handler
// without Responder receives every dispatched call; a plain observer
// without Responder is matched against its exported method set.
type Responder interface {
	RespondsTo(method string) bool
}

// respondsTo is the name-only capability query behind HasResponder and
// CountResponders. On the reflective path a method matches when it
// exists, is exported, and returns nothing.
func respondsTo(obs any, method string) bool {
	if r, ok := obs.(Responder); ok {
		return r.RespondsTo(method)
	}
	if _, ok := obs.(Handler); ok {
		return true
	}
	m := reflect.ValueOf(obs).MethodByName(method)
	return m.IsValid() && m.Type().NumOut() == 0
}

// acceptsCall is the dispatch-time capability query. The reflective
// path additionally requires matching arity and assignable parameter
// types; the void-return requirement makes the no-result contract a
// property of capability itself, never checked per delivery.
func acceptsCall(obs any, c *call.Call) bool {
	if r, ok := obs.(Responder); ok {
		return r.RespondsTo(c.Sig.Method)
	}
	if _, ok := obs.(Handler); ok {
		return true
	}
	m := reflect.ValueOf(obs).MethodByName(c.Sig.Method)
	if !m.IsValid() {
		return false
	}
	mt := m.Type()
	if mt.NumOut() != 0 || mt.NumIn() != len(c.Args) || mt.IsVariadic() {
		return false
	}
	for i, a := range c.Args {
		v := a.Value()
		if v == nil {
			if !nilable(mt.In(i).Kind()) {
				return false
			}
			continue
		}
		if !reflect.TypeOf(v).AssignableTo(mt.In(i)) {
			return false
		}
	}
	return true
}

// invoke replays a duplicated call against the observer's method set.
// Callers have already established capability via acceptsCall.
func invoke(obs any, c *call.Call) {
	m := reflect.ValueOf(obs).MethodByName(c.Sig.Method)
	in := make([]reflect.Value, len(c.Args))
	for i, a := range c.Args {
		v := a.Value()
		if v == nil {
			in[i] = reflect.Zero(m.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(v)
	}
	m.Call(in)
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}
