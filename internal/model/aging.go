package model

import (
	"fmt"
	"time"
)

// Aging is the display bucket derived from how long an item has been open.
type Aging int

const (
	AgingNormal Aging = iota
	AgingWarning
	AgingOverdue
	AgingDone
)

const (
	WarningAfter = 48 * time.Hour
	OverdueAfter = 72 * time.Hour
)

func (a Aging) String() string {
	switch a {
	case AgingWarning:
		return "warning"
	case AgingOverdue:
		return "overdue"
	case AgingDone:
		return "done"
	}
	return "normal"
}

// Classify buckets it by elapsed time since creation. Done wins over age.
func Classify(it Item, now time.Time) Aging {
	if it.Done {
		return AgingDone
	}
	if it.CreatedAt.IsZero() {
		return AgingNormal
	}
	switch elapsed := now.Sub(it.CreatedAt); {
	case elapsed > OverdueAfter:
		return AgingOverdue
	case elapsed > WarningAfter:
		return AgingWarning
	}
	return AgingNormal
}

// Age renders the elapsed time since creation compactly: "now", "5m", "3h", "2d".
func Age(it Item, now time.Time) string {
	if it.CreatedAt.IsZero() {
		return ""
	}
	d := now.Sub(it.CreatedAt)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
}
