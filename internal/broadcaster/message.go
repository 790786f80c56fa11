package broadcaster

// Message is an outbound named notification. The transport decides how to
// encode it onto the wire.
type Message struct {
	Method string
	Params any
}
