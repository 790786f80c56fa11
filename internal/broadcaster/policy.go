package broadcaster

import "fmt"

// Policy selects the audience for a broadcast.
type Policy int

const (
	// AllMembers delivers to every member of the channel, sender included,
	// so the sender sees the server-confirmed record in the same order as
	// everyone else.
	AllMembers Policy = iota

	// MembersExceptSender skips the sender, for callers that already render
	// their own optimistic copy locally.
	MembersExceptSender

	// AllConnections delivers to every connected client regardless of
	// membership. Used only for channel-list updates.
	AllConnections
)

// ParsePolicy parses the per-category delivery settings. AllConnections is
// not configurable; it is reserved for channel-list updates.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "all-members":
		return AllMembers, nil
	case "members-except-sender":
		return MembersExceptSender, nil
	default:
		return 0, fmt.Errorf("unknown delivery policy %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case AllMembers:
		return "all-members"
	case MembersExceptSender:
		return "members-except-sender"
	case AllConnections:
		return "all-connections"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}
