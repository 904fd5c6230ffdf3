// Package timecode converts between millisecond offsets and subtitle-style
// HH:MM:SS,mmm timestamps.
//
// Parsing accepts both comma and period as the fractional separator because
// aligner output varies between the two. Rendering clamps negative offsets to
// zero; subtitle consumers cannot display negative time.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMillis converts a subtitle timestamp such as "00:01:02,345" (or
// "00:01:02.345") into a millisecond offset.
func ParseMillis(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return int64(hours)*3600000 + int64(minutes)*60000 + int64(seconds)*1000 + int64(millis), nil
}

// FormatMillis renders a millisecond offset as an SRT timestamp. Negative
// offsets render as 00:00:00,000.
func FormatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	millis := ms % 1000
	totalSeconds := ms / 1000
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// ParseRange splits an SRT range line ("start --> end") into millisecond
// offsets.
func ParseRange(line string) (int64, int64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range %q", line)
	}
	start, err := ParseMillis(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseMillis(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
