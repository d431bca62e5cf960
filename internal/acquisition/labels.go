package acquisition

// Labels names the channels read for each device.
type Labels struct {
	// ForcePlate holds Fx, Fy, Fz, Mx, My in that order.
	ForcePlate []string
	// BoardCorners holds TopRight, BottomRight, TopLeft, BottomLeft.
	BoardCorners []string
	// Accelerometer is the board's fused displacement channel.
	Accelerometer string
	// Time holds year, month, day, hour, minute, second, millisecond.
	Time []string
}

// DefaultLabels returns the channel names written by the acquisition
// software.
func DefaultLabels() Labels {
	return Labels{
		ForcePlate:    []string{"Fx1", "Fy1", "Fz1", "Mx1", "My1"},
		BoardCorners:  []string{"TopRight Kg", "BottomRight Kg", "TopLeft Kg", "BottomLeft Kg"},
		Accelerometer: "Accelerometer",
		Time:          []string{"year", "month", "day", "hour", "minute", "second", "milisecond"},
	}
}

// boardPoints returns the point labels read for the balance board.
func (l Labels) boardPoints() []string {
	out := append([]string(nil), l.BoardCorners...)
	if l.Accelerometer != "" {
		out = append(out, l.Accelerometer)
	}
	return out
}
