package bencode

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEnd    = errors.New("bencode: unexpected end of input")
	ErrUnrecognizedTag  = errors.New("bencode: unrecognized tag")
	ErrMalformedInteger = errors.New("bencode: malformed integer")
	ErrMalformedLength  = errors.New("bencode: malformed string length")
	ErrNonStringKey     = errors.New("bencode: dictionary key is not a string")
	ErrDepthExceeded    = errors.New("bencode: nesting depth exceeded")
	ErrTrailingData     = errors.New("bencode: trailing data after value")
)

// Causes carried in DecodeError.Err for canonical-form violations.
var (
	errNegativeZero   = errors.New("negative zero")
	errLeadingZero    = errors.New("leading zero")
	errNonDigit       = errors.New("non-digit character")
	errNegativeLength = errors.New("negative length")
)

// ErrorKind enumerates decode failures.
type ErrorKind int

const (
	UnexpectedEnd ErrorKind = iota + 1
	UnrecognizedTag
	MalformedInteger
	MalformedLength
	NonStringKey
	DepthExceeded
	TrailingData
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedEnd:
		return "unexpected_end"
	case UnrecognizedTag:
		return "unrecognized_tag"
	case MalformedInteger:
		return "malformed_integer"
	case MalformedLength:
		return "malformed_length"
	case NonStringKey:
		return "non_string_key"
	case DepthExceeded:
		return "depth_exceeded"
	case TrailingData:
		return "trailing_data"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case UnexpectedEnd:
		return ErrUnexpectedEnd
	case UnrecognizedTag:
		return ErrUnrecognizedTag
	case MalformedInteger:
		return ErrMalformedInteger
	case MalformedLength:
		return ErrMalformedLength
	case NonStringKey:
		return ErrNonStringKey
	case DepthExceeded:
		return ErrDepthExceeded
	case TrailingData:
		return ErrTrailingData
	default:
		return nil
	}
}

// Rule names the grammar rule that was running when decoding failed.
type Rule string

const (
	RuleValue      Rule = "value"
	RuleInteger    Rule = "integer"
	RuleString     Rule = "string"
	RuleList       Rule = "list"
	RuleDictionary Rule = "dictionary"
)

// DecodeError is the single terminal error of a failed decode.
type DecodeError struct {
	Kind   ErrorKind
	Rule   Rule
	Offset int // byte offset where the failing element starts, or len(input) on UnexpectedEnd
	// Remaining is the number of string bytes still owed on UnexpectedEnd.
	Remaining int64
	Tag       byte
	Err       error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%v (%s at offset %d)", e.Kind.sentinel(), e.Rule, e.Offset)
	switch {
	case e.Kind == UnrecognizedTag:
		msg = fmt.Sprintf("%s: %q", msg, e.Tag)
	case e.Kind == UnexpectedEnd && e.Remaining > 0:
		msg = fmt.Sprintf("%s: %d bytes remaining", msg, e.Remaining)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is matches the sentinel for e.Kind.
func (e *DecodeError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
