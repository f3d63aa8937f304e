package chat

import (
	"context"
	"io"
)

// User is the operator behind a message.
type User struct {
	ID        int64
	FirstName string
	Username  string
}

// Document is a file attached to a message.
type Document struct {
	FileID       string
	FileUniqueID string
	FileName     string
	MIMEType     string
	FileSize     int64
}

// Message is one inbound or referenced chat message.
type Message struct {
	ID       int
	ChatID   int64
	From     User
	Text     string
	ReplyTo  *Message
	Document *Document
}

// Client is the chat platform seen from the bot. The platform's dispatch
// and editing primitives are external; this interface is the seam the bot
// (and its tests) work against.
type Client interface {
	// Updates delivers inbound messages until ctx is done.
	Updates(ctx context.Context) <-chan Message
	// Send posts a new message and returns its id for later edits.
	Send(ctx context.Context, chatID int64, text string) (int, error)
	// Edit replaces the text of a previously sent message.
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	// OpenFile opens a streaming read over an attachment's content.
	OpenFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}
