package booking

import (
	"strings"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

// State is a listing filter over a user's bookings.
type State int

const (
	StateAll State = iota
	StateCurrent
	StateFuture
	StatePast
	StateWaiting
	StateRejected
)

var stateNames = map[State]string{
	StateAll:      "ALL",
	StateCurrent:  "CURRENT",
	StateFuture:   "FUTURE",
	StatePast:     "PAST",
	StateWaiting:  "WAITING",
	StateRejected: "REJECTED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseState reads a state token case-insensitively. An empty token means ALL.
// Any other unknown token yields an UnsupportedState error carrying the token as given.
func ParseState(token string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "", "ALL":
		return StateAll, nil
	case "CURRENT":
		return StateCurrent, nil
	case "FUTURE":
		return StateFuture, nil
	case "PAST":
		return StatePast, nil
	case "WAITING":
		return StateWaiting, nil
	case "REJECTED":
		return StateRejected, nil
	default:
		return StateAll, apperror.UnsupportedState(token)
	}
}

// Matches reports whether b falls into the bucket s at instant now.
// It is the reference definition of the buckets: stateCondition must select
// exactly the bookings for which Matches is true.
func (s State) Matches(b *Booking, now time.Time) bool {
	switch s {
	case StateAll:
		return true
	case StateCurrent:
		return !b.Start.After(now) && b.End.After(now)
	case StateFuture:
		return b.Start.After(now)
	case StatePast:
		return b.End.Before(now)
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	default:
		return false
	}
}
