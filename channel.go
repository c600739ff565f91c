package cometd

import "strings"

// Channel represents a Bayeux Channel, a string that looks like a URL path
// such as "/foo/bar", "/meta/connect", or "/service/chat".
//
// See also: https://docs.cometd.org/current/reference/#_concepts_channels
type Channel string

const (
	// MetaHandshake is the Channel for the first message a new client sends.
	MetaHandshake Channel = "/meta/handshake"
	// MetaConnect is the Channel used for connect messages after a
	// successful handshake.
	MetaConnect Channel = "/meta/connect"
	// MetaDisconnect is the Channel used for disconnect messages.
	MetaDisconnect Channel = "/meta/disconnect"
	// MetaSubscribe is the Channel used by a client to subscribe to
	// channels.
	MetaSubscribe Channel = "/meta/subscribe"
	// MetaUnsubscribe is the Channel used by a client to unsubscribe from
	// channels.
	MetaUnsubscribe Channel = "/meta/unsubscribe"

	emptyChannel Channel = ""
)

// ChannelType distinguishes meta, service, and broadcast channels.
type ChannelType string

const (
	// MetaChannelType represents the "/meta/" channel type.
	MetaChannelType ChannelType = "meta"
	// ServiceChannelType represents the "/service/" channel type.
	ServiceChannelType ChannelType = "service"
	// BroadcastChannelType represents all other channels.
	BroadcastChannelType ChannelType = "broadcast"
)

const (
	metaPrefix    string = "/meta/"
	servicePrefix string = "/service/"
)

// Type reports which ChannelType this Channel falls under.
func (c Channel) Type() ChannelType {
	s := string(c)
	switch {
	case strings.HasPrefix(s, metaPrefix):
		return MetaChannelType
	case strings.HasPrefix(s, servicePrefix):
		return ServiceChannelType
	default:
		return BroadcastChannelType
	}
}

// IsValid does its best to check the validity of a Channel name. The
// orchestrator does not maintain a local subscription registry, and
// Subscribe/Unsubscribe forward subscriptions to the wire without calling
// IsValid.
func (c Channel) IsValid() bool {
	s := string(c)
	return len(s) > 0 && strings.HasPrefix(s, "/")
}
