package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"resourcebot/internal/format"
)

// GenericFailure is posted when a command fails for a reason the user
// cannot fix, such as a store error.
const GenericFailure = "Something went wrong while talking to the resource store. Please try again."

// Sender delivers a text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// ChannelContext is the per-message reply handle handed to every command.
type ChannelContext struct {
	ctx     context.Context
	chatID  int64
	hasChat bool
	sender  Sender
	sink    io.Writer
	log     *slog.Logger
	limit   int
}

func newChannelContext(ctx context.Context, in Inbound, sender Sender, sink io.Writer, log *slog.Logger, limit int) *ChannelContext {
	if sink == nil {
		sink = io.Discard
	}
	if log == nil {
		log = slog.Default()
	}
	return &ChannelContext{
		ctx:     ctx,
		chatID:  in.ChatID,
		hasChat: in.HasChat,
		sender:  sender,
		sink:    sink,
		log:     log,
		limit:   limit,
	}
}

// Context returns the context of the message being handled.
func (c *ChannelContext) Context() context.Context { return c.ctx }

// Logger returns the per-message logger.
func (c *ChannelContext) Logger() *slog.Logger { return c.log }

// Post sends text to the reply destination, or to the local sink when the
// message did not come from a chat.
func (c *ChannelContext) Post(text string) {
	if !c.hasChat || c.sender == nil {
		fmt.Fprintln(c.sink, "[MSG]:", text)
		return
	}
	for _, chunk := range format.SplitMessage(text, c.limit) {
		if err := c.sender.Send(c.ctx, c.chatID, chunk); err != nil {
			c.log.Error("Failed to post reply", "err", err)
			return
		}
	}
}

// PostResults renders rows as a table and posts it.
func (c *ChannelContext) PostResults(rows []Resource) {
	c.Post(format.ResourceTable(rows))
}

// Fail reports err to the user. Errors carrying a user message are posted
// verbatim; anything else is logged and answered with GenericFailure.
func (c *ChannelContext) Fail(err error) {
	var ue UserError
	if errors.As(err, &ue) {
		c.Post(ue.UserMessage())
		return
	}
	c.log.Error("Command failed", "err", err)
	c.Post(GenericFailure)
}
