package location

import (
	"errors"
	"strings"
)

var (
	ErrInvalidAddress     = errors.New("address is required")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrInvalidRate        = errors.New("hourly rate must be positive")
	ErrInvalidCapacity    = errors.New("number of spots must be at least 1")
	ErrInvalidStatus      = errors.New("invalid location status")
	ErrInvalidCurrency    = errors.New("currency must be a three letter ISO code")
)

type Coordinates struct {
	lat float64
	lng float64
}

func NewCoordinates(lat, lng float64) (Coordinates, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Coordinates{}, ErrInvalidCoordinates
	}
	return Coordinates{lat: lat, lng: lng}, nil
}

func (c Coordinates) Lat() float64 { return c.lat }
func (c Coordinates) Lng() float64 { return c.lng }

type Address struct {
	value string
}

func NewAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, ErrInvalidAddress
	}
	return Address{value: s}, nil
}

func (a Address) String() string {
	return a.value
}

// Currency is a lower-case ISO 4217 code, the form the payment processor expects.
type Currency struct {
	code string
}

func NewCurrency(s string) (Currency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 3 {
		return Currency{}, ErrInvalidCurrency
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return Currency{}, ErrInvalidCurrency
		}
	}
	return Currency{code: s}, nil
}

func (c Currency) String() string {
	return c.code
}
