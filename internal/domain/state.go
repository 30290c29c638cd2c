package domain

// InterfaceState is a stage of the interface lifecycle. The stages are reached in order during creation.
type InterfaceState int

const (
	InterfaceStateAbsent InterfaceState = iota
	InterfaceStateLinkCreated
	InterfaceStateAddressed
	InterfaceStateKeyed
	InterfaceStateLinkUp
	InterfaceStatePersisted
)

func (s InterfaceState) String() string {
	switch s {
	case InterfaceStateAbsent:
		return "absent"
	case InterfaceStateLinkCreated:
		return "link-created"
	case InterfaceStateAddressed:
		return "addressed"
	case InterfaceStateKeyed:
		return "keyed"
	case InterfaceStateLinkUp:
		return "link-up"
	case InterfaceStatePersisted:
		return "persisted"
	default:
		return "unknown"
	}
}
