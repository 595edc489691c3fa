package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"resourcebot/internal/format"

	"github.com/google/uuid"
)

// telegramMessageLimit is the longest text Telegram accepts in one message.
const telegramMessageLimit = 4096

// Dispatcher turns inbound chat lines into command executions.
// It keeps no state between messages and may be called concurrently.
type Dispatcher struct {
	app    *AppContext
	sender Sender
	sink   io.Writer
	limit  int
}

// NewDispatcher builds a dispatcher replying through sender. Messages
// without a chat destination are answered on sink.
func NewDispatcher(app *AppContext, sender Sender, sink io.Writer) *Dispatcher {
	return &Dispatcher{app: app, sender: sender, sink: sink, limit: telegramMessageLimit}
}

// Handle dispatches a single message. Non-commands and unknown commands are
// dropped without a reply.
func (d *Dispatcher) Handle(ctx context.Context, in Inbound) {
	name, args, ok := ParseCommandLine(in.Text)
	if !ok {
		return
	}

	log := slog.With(
		"request_id", uuid.NewString(),
		"chat_id", in.ChatID,
		"sender_id", in.SenderID,
		"command", name,
	)
	cc := newChannelContext(ctx, in, d.sender, d.sink, log, d.limit)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Command panicked", "panic", r, "stack", string(debug.Stack()))
			cc.Fail(fmt.Errorf("panic: %v", r))
		}
	}()

	if IsHelp(name) {
		cc.Post(d.app.Commands.HelpText())
		return
	}

	desc, ok := d.app.Commands.Lookup(name)
	if !ok {
		log.Debug("Ignoring unknown command", "text", format.Truncate(in.Text, 80))
		return
	}

	q, err := Bind(desc, args)
	if err != nil {
		log.Info("Rejected command arguments", "err", err)
		cc.Fail(err)
		return
	}

	log.Debug("Dispatching command", "args", len(args))
	desc.Command.Execute(d.app, q, cc)
}
