package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies where a failure came from.
type Kind string

const (
	KindNetwork Kind = "network"
	KindParse   Kind = "parse"
	KindFormat  Kind = "format"
	KindRouting Kind = "routing"
)

// Error is the typed failure passed between gateways, the router and the API.
// Op names the operation that failed ("llm", "search", "webpage", "csv", "route").
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s error", e.Op, e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func Network(op string, err error) *Error { return &Error{Kind: KindNetwork, Op: op, Err: err} }
func Parse(op string, err error) *Error   { return &Error{Kind: KindParse, Op: op, Err: err} }
func Format(op string, err error) *Error  { return &Error{Kind: KindFormat, Op: op, Err: err} }
func Routing(op string, err error) *Error { return &Error{Kind: KindRouting, Op: op, Err: err} }

// KindOf returns the taxonomy kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Marker labels for user-visible messages.
const (
	MarkerLLM     = "Error calling LLM"
	MarkerSearch  = "Error during web search"
	MarkerWebpage = "Error summarizing website"
	MarkerCSV     = "CSV parse error"
	MarkerRouting = "Internal routing error"
	MarkerFormat  = "Data format error"
)

// Bracket renders a failure the way the chat transcript shows it: "[label: detail]".
func Bracket(label string, err error) string {
	return fmt.Sprintf("[%s: %v]", label, err)
}

// Marker picks the label for err from its Op and renders it. Unknown ops fall
// back to the routing marker.
func Marker(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return Bracket(MarkerRouting, err)
	}
	switch e.Op {
	case "llm":
		return Bracket(MarkerLLM, e.Err)
	case "search":
		return Bracket(MarkerSearch, e.Err)
	case "webpage":
		return Bracket(MarkerWebpage, e.Err)
	case "csv":
		return Bracket(MarkerCSV, e.Err)
	case "format":
		return fmt.Sprintf("%s: %v", MarkerFormat, e.Err)
	default:
		return Bracket(MarkerRouting, e.Err)
	}
}
