package availability

import (
	"fmt"
	"time"
)

// minutesOf parses "HH:MM" into minutes after midnight.
func minutesOf(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// fitsShift reports whether [start, start+dur) lies inside [shiftStart, shiftEnd].
func fitsShift(start, dur, shiftStart, shiftEnd int) bool {
	return start >= shiftStart && start+dur <= shiftEnd
}

// overlaps reports whether two half-open intervals intersect.
func overlaps(aStart, aDur, bStart, bDur int) bool {
	return aStart < bStart+bDur && bStart < aStart+aDur
}
