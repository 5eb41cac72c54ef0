package command

import (
	"errors"
	"strconv"

	"github.com/yndnr/kvdis-go/internal/core/domain"
)

// ErrorPrefix starts every failure line of the protocol.
const ErrorPrefix = "[Error]: "

// Result mirrors the Command that produced it. Only GET carries a Value and
// only EXISTS carries Exists; every other kind is void.
type Result struct {
	Kind   Kind
	Value  string
	Exists bool
}

// Void returns the payload-free result of k.
func Void(k Kind) Result {
	return Result{Kind: k}
}

// ValueResult returns the result of a successful GET.
func ValueResult(v string) Result {
	return Result{Kind: KindGet, Value: v}
}

// ExistsResult returns the result of an EXISTS.
func ExistsResult(ok bool) Result {
	return Result{Kind: KindExists, Exists: ok}
}

// String renders the success payload: the value for GET, "true"/"false" for
// EXISTS and the empty string otherwise.
func (r Result) String() string {
	switch r.Kind {
	case KindGet:
		return r.Value
	case KindExists:
		return strconv.FormatBool(r.Exists)
	default:
		return ""
	}
}

// Render produces the single response line for an outcome, without the
// trailing newline.
func Render(res Result, err error) string {
	if err == nil {
		return res.String()
	}
	return RenderError(err)
}

// RenderError formats a failure line. Only the variant text of domain errors
// reaches the client; anything else is reported as an internal error.
func RenderError(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return ErrorPrefix + de.Display()
	}
	return ErrorPrefix + "internal error"
}
