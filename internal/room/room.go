package room

import (
	"errors"
	"fmt"
	"strings"
)

// ID identifies one of the six discussion rooms tracked by this service.
// The set is closed: rooms are physical and do not appear or disappear at
// runtime.
type ID string

const (
	DR6  ID = "DR6"
	DR7  ID = "DR7"
	DR8  ID = "DR8"
	DR9  ID = "DR9"
	DR10 ID = "DR10"
	DR11 ID = "DR11"
)

// ErrUnknownRoom is returned by Parse for a code outside the fixed set.
var ErrUnknownRoom = errors.New("unknown room")

var locations = map[ID]string{
	DR6:  "COM2-02-12",
	DR7:  "COM2-03-14",
	DR8:  "COM2-03-30",
	DR9:  "COM2-04-06",
	DR10: "COM2-02-24",
	DR11: "COM2-02-23",
}

var all = []ID{DR6, DR7, DR8, DR9, DR10, DR11}

// All returns every tracked room in display order.
func All() []ID {
	out := make([]ID, len(all))
	copy(out, all)
	return out
}

// Location returns the physical location of the room, e.g. "COM2-02-12".
func (id ID) Location() string {
	return locations[id]
}

// Parse normalizes a user-provided room code and validates it against the
// fixed set.
func Parse(s string) (ID, error) {
	id := ID(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := locations[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoom, s)
	}
	return id, nil
}

// Codes returns the valid room codes as plain strings, for error messages
// and seeding.
func Codes() []string {
	codes := make([]string, len(all))
	for i, id := range all {
		codes[i] = string(id)
	}
	return codes
}
