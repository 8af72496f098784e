package domain

// SessionID identifies one live connection. Opaque, per-socket.
type SessionID string

// Command is an inbound intent routed through the hub pipeline.
type Command interface {
	Session() SessionID
}

// SendMessageCommand asks for a durable append followed by a broadcast.
type SendMessageCommand struct {
	Origin  SessionID
	User    string
	Content string
}

func (c SendMessageCommand) Session() SessionID {
	return c.Origin
}

// TypingCommand signals that a user is composing a message.
type TypingCommand struct {
	Origin SessionID
	User   string
}

func (c TypingCommand) Session() SessionID {
	return c.Origin
}
