// Package timefmt renders countdowns and Indian Standard Time timestamps
// for display. Nothing here feeds back into unlock decisions.
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// ISTZone is the IANA name of Indian Standard Time.
const ISTZone = "Asia/Kolkata"

// DisplayLayout matches "Feb 14, 2025 9:30 AM".
const DisplayLayout = "Jan 02, 2006 3:04 PM"

// LockedText is shown for a box whose unlock is not yet scheduled.
const LockedText = "Locked"

var ist = loadIST()

func loadIST() *time.Location {
	if loc, err := time.LoadLocation(ISTZone); err == nil {
		return loc
	}
	// Hosts without tzdata still get the correct fixed offset.
	return time.FixedZone("IST", 5*60*60+30*60)
}

// IST returns the Indian Standard Time location.
func IST() *time.Location { return ist }

// Countdown formats a remaining duration as "1h 1m 1s", dropping leading
// zero units. Sub-second remainders are truncated and negative durations
// render as "0s".
func Countdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if hours > 0 || minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))
	return strings.Join(parts, " ")
}

// Remaining formats a ledger remaining-time result; ok=false means the
// unlock is not scheduled.
func Remaining(d time.Duration, ok bool) string {
	if !ok {
		return LockedText
	}
	return Countdown(d)
}

// Display formats t in IST using DisplayLayout. The zero time renders empty.
func Display(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(ist).Format(DisplayLayout)
}

// ISO formats t in IST as RFC 3339 with the +05:30 offset.
func ISO(t time.Time) string {
	return t.In(ist).Format(time.RFC3339)
}

// DateString returns the IST calendar date of t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.In(ist).Format("2006-01-02")
}
