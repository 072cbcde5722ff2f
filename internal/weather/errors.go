package weather

import (
	"errors"
	"fmt"
)

// Kind classifies a rainfall fetch failure.
type Kind int

const (
	// KindUnsupported means the location is not in the registry.
	KindUnsupported Kind = iota + 1
	// KindNoData means the provider answered without a usable series.
	KindNoData
	// KindTransport covers network, status and decoding failures.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindNoData:
		return "no_data"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// FetchError is returned by every rainfall operation that fails.
type FetchError struct {
	Kind     Kind
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindUnsupported:
		return fmt.Sprintf("Unsupported state: %s", e.Location)
	case KindNoData:
		return "No rainfall timeseries returned."
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "rainfall request failed"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsKind reports whether err is a FetchError of kind k.
func IsKind(err error, k Kind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == k
}
