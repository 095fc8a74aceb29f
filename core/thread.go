package core

import (
	"strings"
	"sync"
	"time"
)

// ResponseType categorizes a thread message.
type ResponseType string

const (
	// ResponseTypeText is a plain conversational message.
	ResponseTypeText ResponseType = "text"
	// ResponseTypeCommand marks a message holding executable or structured
	// output; it is rendered raw (without a speaker prefix) in history.
	ResponseTypeCommand ResponseType = "command"
	// ResponseTypeError marks a message describing a failure.
	ResponseTypeError ResponseType = "error"
)

// Message is one immutable entry of a thread's append-only log.
type Message struct {
	ID           string       `json:"id"`
	SenderID     string       `json:"sender_id"`
	IsUser       bool         `json:"is_user"`
	ResponseType ResponseType `json:"response_type"`
	ResponseText string       `json:"response_text"`
	Timestamp    time.Time    `json:"timestamp"`
}

// Thread is the durable, append-only conversation log for one subscription.
// Messages are never mutated or deleted by the pipeline, only appended. It is
// safe for concurrent access.
type Thread struct {
	SubscriptionID string    `json:"subscription_id"`
	Messages       []Message `json:"messages"`
	Created        time.Time `json:"created"`
	Updated        time.Time `json:"updated"`
	mu             sync.RWMutex
}

// NewThread creates an empty thread keyed by the subscription id.
func NewThread(subscriptionID string) *Thread {
	now := time.Now().UTC()
	return &Thread{SubscriptionID: subscriptionID, Created: now, Updated: now}
}

// Append adds a message to the log updating the Updated timestamp.
func (t *Thread) Append(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = append(t.Messages, msg)
	t.Updated = time.Now().UTC()
}

// Len returns the current number of messages.
func (t *Thread) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Messages)
}

// GetMessages returns a defensive copy of the message log.
func (t *Thread) GetMessages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msgs := make([]Message, len(t.Messages))
	copy(msgs, t.Messages)
	return msgs
}

// RenderHistory renders the log as alternating "User: …" / "Agent: …" lines
// suitable for injection into a prompt. Command-type agent messages are
// rendered as their raw text so generated code survives round-trips intact.
func (t *Thread) RenderHistory() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lines := make([]string, 0, len(t.Messages))
	for _, msg := range t.Messages {
		switch {
		case msg.IsUser:
			lines = append(lines, "User: "+msg.ResponseText)
		case msg.ResponseType == ResponseTypeCommand:
			lines = append(lines, msg.ResponseText)
		default:
			lines = append(lines, "Agent: "+msg.ResponseText)
		}
	}
	return strings.Join(lines, "\n")
}

// Clone returns a deep copy of the thread safe for independent reads.
func (t *Thread) Clone() *Thread {
	t.mu.RLock()
	defer t.mu.RUnlock()
	clone := &Thread{SubscriptionID: t.SubscriptionID, Created: t.Created, Updated: t.Updated}
	clone.Messages = make([]Message, len(t.Messages))
	copy(clone.Messages, t.Messages)
	return clone
}
