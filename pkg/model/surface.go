package model

// Header is a common structure for both requests and responses.
type Header struct {
	// Key field, which identifies the transitioning element the message
	// belongs to
	Key string `json:"key"`
}

// Request represents a structure for the requests.
type Request struct {
	Header
	// CommandCode is the command code.
	CommandCode CommandCode `json:"command_code"`
	// Command is the actual request payload.
	Command any `json:"command"`
}

// Response defines a structure for responses.
type Response struct {
	Header
	// CommandResponse holds the actual response data.
	CommandResponse any `json:"command_response"`
	// Error is an error value; if it's nil, the command was successful.
	Error error `json:"error"`
}

// CommandHandler represents a function that handles command requests and returns responses.
type CommandHandler func(request *Request, response *Response) error

// Surface interface definition that a rendering-surface provider needs to
// implement. The transition side is the client; the process that actually
// paints is the server.
type Surface interface {
	SurfaceServer
	SurfaceClient

	// Decode decodes the raw data into the target object
	// Both the request and response contain fields of the any type, we need to decode it
	Decode(raw any, target any) error
}

// SurfaceConfig is an interface representing the contract for a configuration
// object that can be validated.
type SurfaceConfig interface {
	Validate() error
}

// SurfaceServer interface defines the fundamental behaviors of a surface host.
type SurfaceServer interface {
	// Start initiates the surface host to begin listening on the specified address.
	Start(listenAddress string, handler CommandHandler, config SurfaceConfig) error
}

// SurfaceClient interface defines the fundamental behaviors of the pushing side.
type SurfaceClient interface {
	// InitConnections initializes a set of connections to the given surfaces.
	// It returns an error if any connection fails.
	InitConnections(surfaces []*SurfaceNode, config SurfaceConfig) error

	// SendRequest sends the command request
	SendRequest(surfaceID string, request *Request, response *Response) error
}
