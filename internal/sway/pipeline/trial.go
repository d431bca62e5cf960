package pipeline

import (
	"path/filepath"
	"strings"
)

// Device codes as they appear in acquisition paths.
const (
	DeviceForcePlate = "FP"
	DeviceBoard      = "BB"
)

const subjectMarker = "Repro"

// TrialInfo identifies a recording. Every field is a single character
// taken from the path, or empty when the path does not carry it.
type TrialInfo struct {
	Device       string `json:"device"`
	Subject      string `json:"subject"`
	Trial        string `json:"trial"`
	BalanceBoard string `json:"balance board"`
}

// IsBalanceBoard reports whether the trial was recorded by the board.
func (t TrialInfo) IsBalanceBoard() bool { return t.Device == DeviceBoard }

// Key groups the two device recordings of the same trial.
func (t TrialInfo) Key() string {
	return t.Subject + "/" + t.BalanceBoard + "/" + t.Trial
}

// ParseTrialInfo reads the trial identity from an acquisition path of the
// form .../Repro<subject>/.../<device>/<board>_<trial>...
func ParseTrialInfo(path string) TrialInfo {
	p := filepath.ToSlash(path)
	info := TrialInfo{Device: DeviceBoard}
	if strings.Contains(p, DeviceForcePlate) {
		info.Device = DeviceForcePlate
	}
	info.Subject = charAfter(p, subjectMarker)
	info.BalanceBoard = charAfter(p, info.Device+"/")
	if info.BalanceBoard != "" {
		info.Trial = charAfter(p, info.Device+"/"+info.BalanceBoard+"_")
	}
	return info
}

func charAfter(s, marker string) string {
	i := strings.Index(s, marker)
	if i < 0 {
		return ""
	}
	j := i + len(marker)
	if j >= len(s) {
		return ""
	}
	return s[j : j+1]
}
