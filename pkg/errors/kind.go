package errors

import "errors"

// Kind classifies a pipeline failure.
type Kind int

const (
	KindUnexpected Kind = iota
	// KindConfiguration is a static failure detected before any network call.
	KindConfiguration
	// KindFetch is a transport or remote failure.
	KindFetch
	// KindEmpty means the source answered with zero rows.
	KindEmpty
	// KindSchema means the canonical fields were missing from a response.
	KindSchema
)

var kindCodes = []struct {
	kind Kind
	code ErrorCode
}{
	{KindConfiguration, ErrCodeInvalidConfiguration},
	{KindFetch, ErrCodeMarketDataFetchFailed},
	{KindEmpty, ErrCodeNoDataFound},
	{KindSchema, ErrCodeMarketDataSchema},
}

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindFetch:
		return "fetch error"
	case KindEmpty:
		return "empty data"
	case KindSchema:
		return "schema error"
	default:
		return "unexpected error"
	}
}

// KindOf returns the first kind whose code appears in err's chain.
// Configuration wins over fetch, fetch over empty, empty over schema.
func KindOf(err error) Kind {
	for _, kc := range kindCodes {
		if HasCodeInChain(err, kc.code) {
			return kc.kind
		}
	}

	return KindUnexpected
}

func IsConfigurationError(err error) bool { return KindOf(err) == KindConfiguration }

func IsFetchError(err error) bool { return KindOf(err) == KindFetch }

func IsEmptyDataError(err error) bool { return KindOf(err) == KindEmpty }

func IsSchemaError(err error) bool { return KindOf(err) == KindSchema }

// Describe renders err as "<kind>: <detail>", dropping the numeric code.
func Describe(err error) string {
	if err == nil {
		return "no data"
	}

	detail := err.Error()

	var coded *Error
	if errors.As(err, &coded) {
		detail = coded.Detail()
	}

	return KindOf(err).String() + ": " + detail
}
