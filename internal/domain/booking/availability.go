package booking

// Availability is the capacity decision for one location and one interval.
type Availability struct {
	Capacity    int
	Overlapping int
}

func (a Availability) IsAvailable() bool {
	return IsAvailable(a.Overlapping, a.Capacity)
}

func (a Availability) Remaining() int {
	if a.Overlapping >= a.Capacity {
		return 0
	}
	return a.Capacity - a.Overlapping
}

// IsAvailable reports whether one more booking fits. Reaching capacity exactly is not available.
func IsAvailable(overlapping, capacity int) bool {
	return overlapping < capacity
}

// CountOverlapping counts the slots in others that overlap slot.
func CountOverlapping(slot TimeSlot, others []TimeSlot) int {
	n := 0
	for _, o := range others {
		if slot.Overlaps(o) {
			n++
		}
	}
	return n
}
