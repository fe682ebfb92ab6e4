package rabbitmq

import "github.com/Maureenhddi/sergic-app/internal/core/domain"

const (
	RoutingKeyShare  = "device.share"
	RoutingKeyHaptic = "device.haptic"

	RoutingKeyNetworkOnline  = "network.online"
	RoutingKeyNetworkOffline = "network.offline"
)

// shareCommand - body of a device.share message.
type shareCommand struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

func newShareCommand(p domain.SharePayload) shareCommand {
	return shareCommand{Title: p.Title, Text: p.Text, URL: p.URL}
}

// hapticCommand - body of a device.haptic message.
type hapticCommand struct {
	Style string `json:"style"`
}

// networkEvent - optional body of a network.* message. Connected overrides the routing key when set.
type networkEvent struct {
	Connected *bool  `json:"connected,omitempty"`
	Type      string `json:"connection_type,omitempty"`
}
