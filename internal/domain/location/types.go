package location

type Status string

const (
	StatusAvailable    Status = "available"
	StatusNotAvailable Status = "not-available"
	// StatusFull is never stored; it is derived from occupancy for a window.
	StatusFull Status = "full"
)

func (s Status) String() string {
	return string(s)
}

// IsStored reports whether s may be persisted on a location.
func (s Status) IsStored() bool {
	return s == StatusAvailable || s == StatusNotAvailable
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsStored() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
