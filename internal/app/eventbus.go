package app

// region interface-events

// TopicInterfaceCreated is published with an InterfaceEvent after an interface was created.
const TopicInterfaceCreated = "interface:created"

// TopicInterfaceRemoved is published with an InterfaceEvent after an interface was removed.
const TopicInterfaceRemoved = "interface:removed"

// TopicInterfaceUpdated is published with an InterfaceEvent after a wg set call or a config save.
const TopicInterfaceUpdated = "interface:updated"

// endregion interface-events

// region peer-events

// TopicPeerProvisioned is published with a PeerEvent after a peer was provisioned.
const TopicPeerProvisioned = "peer:provisioned"

// TopicPeerRemoved is published with a PeerEvent after a peer was removed from an interface.
const TopicPeerRemoved = "peer:removed"

// endregion peer-events

// InterfaceEvent describes a change of an interface.
type InterfaceEvent struct {
	Interface string
	Action    string
	Error     string // set if the operation failed
}

// PeerEvent describes a change of a peer.
type PeerEvent struct {
	Interface string
	PeerKey   string
	Action    string
}
