package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimeSlot is the half-open interval [start, end).
type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

func (ts TimeSlot) Start() time.Time {
	return ts.start
}

func (ts TimeSlot) End() time.Time {
	return ts.end
}

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

// Overlaps uses strict comparisons on both sides, so slots that only touch do not overlap.
func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return ts.start.Before(other.end) && other.start.Before(ts.end)
}

func (ts TimeSlot) Equal(other TimeSlot) bool {
	return ts.start.Equal(other.start) && ts.end.Equal(other.end)
}

func (ts TimeSlot) StartsBefore(t time.Time) bool {
	return ts.start.Before(t)
}

// Date returns the calendar day the slot starts on in loc.
func (ts TimeSlot) Date(loc *time.Location) time.Time {
	y, m, d := ts.start.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func (ts TimeSlot) String() string {
	return fmt.Sprintf("[%s,%s)", ts.start.Format(time.RFC3339), ts.end.Format(time.RFC3339))
}

// Money is an amount in the smallest currency unit.
type Money struct {
	amount int64
}

func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: amount}, nil
}

// MoneyOf is for amounts that were already validated, such as persisted values.
func MoneyOf(amount int64) Money {
	return Money{amount: amount}
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

// Diff returns m - other and may be negative.
func (m Money) Diff(other Money) int64 {
	return m.amount - other.amount
}

var (
	plateRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 -]{1,14}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

type Plate struct {
	value string
}

func NewPlate(s string) (Plate, error) {
	normalized := NormalizePlate(s)
	if !plateRegex.MatchString(normalized) {
		return Plate{}, ErrInvalidPlate
	}
	return Plate{value: normalized}, nil
}

func NormalizePlate(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func IsValidPlate(s string) bool {
	return plateRegex.MatchString(NormalizePlate(s))
}

func (p Plate) String() string {
	return p.value
}

type Phone struct {
	value string
}

func NewPhone(s string) (Phone, error) {
	normalized := NormalizePhone(s)
	if !phoneRegex.MatchString(normalized) {
		return Phone{}, ErrInvalidPhone
	}
	return Phone{value: normalized}, nil
}

// NormalizePhone strips the separators people commonly type.
func NormalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(s))
}

func IsValidPhone(s string) bool {
	return phoneRegex.MatchString(NormalizePhone(s))
}

func (p Phone) String() string {
	return p.value
}
