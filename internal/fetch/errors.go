package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a resolve failure so callers can tell the tiers apart.
type Kind string

const (
	KindNetwork Kind = "network" // timeout, DNS, refused connection, non-200 status
	KindDecode  Kind = "decode"  // body bytes could not be turned into text
	KindParse   Kind = "parse"   // text is not a valid JSON or RSS document
	KindCache   Kind = "cache"   // cache file missing, corrupt, or unwritable
)

// Error is a classified failure from one of the resolve tiers.
type Error struct {
	Kind Kind
	Op   string // "fetch", "decode", "parse", "cache load", "cache save"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == k
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func newError(k Kind, op string, err error) *Error {
	return &Error{Kind: k, Op: op, Err: err}
}
