package errs

import cr "github.com/cockroachdb/errors"

// Kind classifies expected failures so transports can render them uniformly.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindConflict           Kind = "conflict"
	KindForbidden          Kind = "forbidden"
	KindExternalDependency Kind = "external_dependency"
	KindInternal           Kind = "internal"
)

var (
	markNotFound           = cr.New(string(KindNotFound))
	markInvalidInput       = cr.New(string(KindInvalidInput))
	markConflict           = cr.New(string(KindConflict))
	markForbidden          = cr.New(string(KindForbidden))
	markExternalDependency = cr.New(string(KindExternalDependency))
)

// Classify marks err with the given kind. KindInternal leaves err untouched.
func Classify(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	switch kind {
	case KindNotFound:
		return cr.Mark(err, markNotFound)
	case KindInvalidInput:
		return cr.Mark(err, markInvalidInput)
	case KindConflict:
		return cr.Mark(err, markConflict)
	case KindForbidden:
		return cr.Mark(err, markForbidden)
	case KindExternalDependency:
		return cr.Mark(err, markExternalDependency)
	default:
		return err
	}
}

// NewKind creates a sentinel error already carrying kind.
func NewKind(kind Kind, msg string) error {
	return Classify(cr.New(msg), kind)
}

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case cr.Is(err, markNotFound):
		return KindNotFound
	case cr.Is(err, markInvalidInput):
		return KindInvalidInput
	case cr.Is(err, markConflict):
		return KindConflict
	case cr.Is(err, markForbidden):
		return KindForbidden
	case cr.Is(err, markExternalDependency):
		return KindExternalDependency
	default:
		return KindInternal
	}
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
