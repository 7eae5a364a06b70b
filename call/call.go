// Package call provides the type-erased, replayable representation of
// a void method invocation that multicast dispatch fans out.
//
// A Call binds a selector to an ordered list of tagged arguments. The
// value built at the dispatch site may reference the caller's live
// storage (struct arguments are captured by pointer); Clone produces
// an independent duplicate per delivery that is safe to invoke later,
// concurrently, after the original stack frame is gone.
//
// Forwardable methods return nothing. That is a contract of the
// signatures this package represents, not a per-call check: the
// capability query on the dispatch side never matches a method with
// results.
package call

import "github.com/google/uuid"

// Signature is the shape of a forwardable call: a selector plus the
// ordered kinds of its arguments.
type Signature struct {
	Method string
	Kinds  []Kind
}

// Call is one method invocation. ID identifies the logical call and is
// shared by all of its duplicates, so deliveries for the same dispatch
// correlate in event streams.
type Call struct {
	ID   string
	Sig  Signature
	Args []Arg
}

// New builds a Call for the given selector. The signature's kind list
// is derived from the arguments.
func New(method string, args ...Arg) *Call {
	kinds := make([]Kind, len(args))
	for i, a := range args {
		kinds[i] = a.kind
	}
	return &Call{
		ID:   uuid.Must(uuid.NewV7()).String(),
		Sig:  Signature{Method: method, Kinds: kinds},
		Args: args,
	}
}

// Validate returns an UnsupportedArgError for the first argument whose
// kind cannot be duplicated, or nil if every argument is safe to copy.
func (c *Call) Validate() error {
	for i, a := range c.Args {
		if !a.kind.cloneable() {
			return &UnsupportedArgError{Method: c.Sig.Method, Index: i, Kind: a.kind}
		}
	}
	return nil
}

// Clone produces an independent duplicate. Scalar and reference
// arguments copy their boxed value; struct arguments snapshot the
// pointee, so the duplicate does not race the original call frame or
// other duplicates.
func (c *Call) Clone() (*Call, error) {
	args := make([]Arg, len(c.Args))
	for i, a := range c.Args {
		dup, err := a.clone(c.Sig.Method, i)
		if err != nil {
			return nil, err
		}
		args[i] = dup
	}
	return &Call{ID: c.ID, Sig: c.Sig, Args: args}, nil
}
