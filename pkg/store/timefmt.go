package store

import "time"

// TimeAgo buckets an elapsed time into the human-readable divider label used
// between message groups: "Today", "Yesterday", a weekday ("Monday, 2
// January") within the current month, or a dated form for older messages.
// The send time is evaluated in now's location.
func TimeAgo(t, now time.Time) string {
	t = t.In(now.Location())

	switch {
	case now.Year()-t.Year() > 0:
		return t.Format("2 January, 2006")
	case int(now.Month())-int(t.Month()) > 0:
		return t.Format("Monday, 2 January")
	default:
		switch now.Day() - t.Day() {
		case 0:
			return "Today"
		case 1:
			return "Yesterday"
		default:
			return t.Format("Monday, 2 January")
		}
	}
}

// TimeAgoShort is the compact room-list variant: a clock time today,
// "Yesterday", and date forms beyond that.
func TimeAgoShort(t, now time.Time) string {
	t = t.In(now.Location())

	switch {
	case now.Year()-t.Year() > 0:
		return t.Format("2006-01-02")
	case int(now.Month())-int(t.Month()) > 0:
		return t.Format("01-02")
	default:
		switch now.Day() - t.Day() {
		case 0:
			return t.Format("15:04")
		case 1:
			return "Yesterday"
		default:
			return t.Format("01-02")
		}
	}
}

// clockTime renders the short in-bubble send time.
func clockTime(t, now time.Time) string {
	return t.In(now.Location()).Format("15:04")
}
