package errs

import (
	"strconv"
	"strings"
)

// New builds an error from a free mix of strings, errors, and values, joined
// with single spaces. Empty strings are skipped so call sites can pass
// conditionally-empty labels without punctuation cleanup.
func New(args ...any) error {
	return Wrap(IOError, args...)
}

// Wrap builds an error carrying status, from the same argument style as New.
// status is retrievable afterward with [As] / [Is].
func Wrap(status Status, args ...any) error {
	var b strings.Builder
	space := ""
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			if v == "" {
				continue
			}
			b.WriteString(space + v)
		case error:
			if v == nil {
				continue
			}
			b.WriteString(space + v.Error())
		case int:
			b.WriteString(space + strconv.Itoa(v))
		case float64:
			b.WriteString(space + strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			b.WriteString(space + strconv.FormatBool(v))
		default:
			b.WriteString(space + "arg" + strconv.Itoa(i) + "=?")
		}
		space = " "
	}
	return &statusError{status: status, message: b.String()}
}

// Sentinel errors for conditions that never carry caller-supplied context.
var (
	ErrDoubleFinalize  = Wrap(DoubleFinalize, "document already finalized")
	ErrNoPagesDefined  = Wrap(NoPagesDefined, "no pages defined")
	ErrBadID           = Wrap(BadID, "id does not belong to this document")
	ErrNegativeLineWidth = Wrap(NegativeLineWidth, "line width must not be negative")
)
