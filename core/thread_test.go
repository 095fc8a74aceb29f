package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThread_AppendOnly(t *testing.T) {
	th := NewThread("sub-1")
	th.Append(Message{SenderID: "user-1", IsUser: true, ResponseType: ResponseTypeText, ResponseText: "hello"})
	th.Append(Message{SenderID: "agent-1", ResponseType: ResponseTypeText, ResponseText: "hi there"})

	assert.Equal(t, 2, th.Len())
	msgs := th.GetMessages()
	assert.Equal(t, "hello", msgs[0].ResponseText)
	assert.True(t, msgs[0].IsUser)
	assert.False(t, msgs[1].IsUser)
}

func TestThread_RenderHistory(t *testing.T) {
	th := NewThread("sub-1")
	th.Append(Message{IsUser: true, ResponseType: ResponseTypeText, ResponseText: "compute the sum"})
	th.Append(Message{ResponseType: ResponseTypeCommand, ResponseText: "print(1+2)"})
	th.Append(Message{ResponseType: ResponseTypeText, ResponseText: "the sum is 3"})

	assert.Equal(t, "User: compute the sum\nprint(1+2)\nAgent: the sum is 3", th.RenderHistory())
}

func TestThread_CloneIsIndependent(t *testing.T) {
	th := NewThread("sub-1")
	th.Append(Message{IsUser: true, ResponseText: "a"})

	clone := th.Clone()
	th.Append(Message{IsUser: true, ResponseText: "b"})

	assert.Equal(t, 1, clone.Len())
	assert.Equal(t, 2, th.Len())
}
