package shipping

import "time"

// MessageType is the severity of a message posted to an event's message log
type MessageType string

const (
	MessageTypeInfo  MessageType = "INFO"
	MessageTypeError MessageType = "ERROR"
)

// Message is a status message posted to the originating event's message log
type Message struct {
	Time        time.Time
	Source      string
	MessageType MessageType
	MessageText string
	DeviceName  string
	UserID      string
}

// IsError returns true for ERROR messages
func (m Message) IsError() bool {
	return m.MessageType == MessageTypeError
}
