package clients

import (
	"github.com/gorilla/mux"
	"github.com/zishang520/socket.io/v2/socket"
)

// Client is a connected monitoring agent. One agent serves one computer, so
// the connection carries both the tenant and the computer identity.
type Client struct {
	ID             string
	Socket         *socket.Socket
	OrganizationID string
	ComputerID     string
}

// SocketIOClient defines the interface for the agent transport
type SocketIOClient interface {
	RegisterWithRouter(router *mux.Router)
	GetClientIDs() []string
	GetClientByID(clientID string) any
	SendMessage(clientID string, msg any) error
	RegisterMessageHandler(handler func(client any, msg any))
	RegisterConnectionHook(hook func(client any) error)
	RegisterDisconnectionHook(hook func(client any) error)
	RegisterPingHook(hook func(client any) error)
}

// MessageSender defines the interface for sending messages to connected agents
type MessageSender interface {
	SendMessage(clientID string, msg any) error
}
