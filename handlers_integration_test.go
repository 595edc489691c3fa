package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"resourcebot/internal/format"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func chatMessage(text string) Inbound {
	return Inbound{SenderID: 5, ChatID: 1, HasChat: true, Text: text}
}

// send dispatches text and returns the replies it produced.
func send(t *testing.T, d *Dispatcher, s *recordingSender, text string) []string {
	t.Helper()
	before := len(s.texts())
	d.Handle(context.Background(), chatMessage(text))
	return s.texts()[before:]
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *recordingSender, *AppContext) {
	t.Helper()
	app := newTestAppContext(newTestStore(t))
	s := &recordingSender{}
	return NewDispatcher(app, s, nil), s, app
}

func TestRoundTripAddEditRemove(t *testing.T) {
	d, s, app := newTestDispatcher(t)
	ctx := context.Background()

	replies := send(t, d, s, `!addResource Amber K3 NW "Behind the waterfall"`)
	if len(replies) != 1 || !strings.HasPrefix(replies[0], "Added Resource ```") {
		t.Fatalf("unexpected add reply: %q", replies)
	}
	if !strings.Contains(replies[0], `"id": 2`) {
		t.Fatalf("add reply should carry the new id: %q", replies[0])
	}

	rows, err := app.Store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	added := Resource{ID: 2, Resource: "Amber", Region: "K3", Island: "NW", Description: "Behind the waterfall"}
	if len(rows) != 2 || rows[1] != added {
		t.Fatalf("after add got %+v", rows)
	}
	listing := send(t, d, s, "!listResources")
	if len(listing) != 1 || !strings.Contains(listing[0], "Behind the waterfall") {
		t.Fatalf("listing should show the new row: %q", listing)
	}

	replies = send(t, d, s, `!editResource 2 Amber K4 SW "Under the bridge"`)
	if len(replies) != 1 || !strings.HasPrefix(replies[0], "Updated Resource ```") {
		t.Fatalf("unexpected edit reply: %q", replies)
	}
	rows, _ = app.Store.ListAll(ctx)
	edited := Resource{ID: 2, Resource: "Amber", Region: "K4", Island: "SW", Description: "Under the bridge"}
	if len(rows) != 2 || rows[1] != edited {
		t.Fatalf("after edit got %+v", rows)
	}

	if replies := send(t, d, s, "!removeResource 2"); len(replies) != 0 {
		t.Fatalf("remove should not reply, got %q", replies)
	}
	rows, _ = app.Store.ListAll(ctx)
	if len(rows) != 1 || rows[0].ID != 1 {
		t.Fatalf("after remove got %+v", rows)
	}
	listing = send(t, d, s, "!listResources")
	if strings.Contains(listing[0], "Amber") {
		t.Fatalf("removed row still listed: %q", listing[0])
	}

	// Removing again is a no-op.
	if replies := send(t, d, s, "!removeResource 2"); len(replies) != 0 {
		t.Fatalf("second remove should not reply, got %q", replies)
	}
	if n, _ := app.Store.Count(ctx); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestWhereIs(t *testing.T) {
	d, s, _ := newTestDispatcher(t)

	replies := send(t, d, s, "!whereIs Ruby")
	want := format.ResourceTable([]Resource{{ID: 1, Resource: "Ruby", Region: "K5", Island: "SE", Description: "West coast"}})
	if len(replies) != 1 || replies[0] != want {
		t.Fatalf("whereIs Ruby = %q, want %q", replies, want)
	}

	replies = send(t, d, s, "!whereIs Sapphire")
	if len(replies) != 1 || replies[0] != format.NotFound {
		t.Fatalf("whereIs Sapphire = %q, want %q", replies, format.NotFound)
	}
}

func TestWhereIsWildcardsAreLiteral(t *testing.T) {
	d, s, _ := newTestDispatcher(t)

	for _, q := range []string{"%", "_", `"' OR 1=1 --"`} {
		replies := send(t, d, s, "!whereIs "+q)
		if len(replies) != 1 || replies[0] != format.NotFound {
			t.Fatalf("whereIs %s = %q, want not found", q, replies)
		}
	}
}

func TestMissingParameterCreatesNothing(t *testing.T) {
	d, s, app := newTestDispatcher(t)

	replies := send(t, d, s, "!addResource Amber K3")
	want := "Missing Parameter 'island'. Usage: '!addResource <resource> <region> <island> <description>'"
	if len(replies) != 1 || replies[0] != want {
		t.Fatalf("reply = %q, want %q", replies, want)
	}
	if n, _ := app.Store.Count(context.Background()); n != 1 {
		t.Fatalf("count = %d, want only the seed row", n)
	}
}

func TestInvalidIDReply(t *testing.T) {
	d, s, _ := newTestDispatcher(t)

	for _, text := range []string{"!removeResource abc", "!editResource abc Amber K3 NW x"} {
		replies := send(t, d, s, text)
		want := "Invalid Parameter 'id': 'abc' is not a number."
		if len(replies) != 1 || replies[0] != want {
			t.Fatalf("%s: reply = %q, want %q", text, replies, want)
		}
	}
}

func TestHelpPrefixRoutesToHelp(t *testing.T) {
	d, s, app := newTestDispatcher(t)
	help := app.Commands.HelpText()

	for _, text := range []string{"!help", "!helpme", "!help addResource"} {
		replies := send(t, d, s, text)
		if len(replies) != 1 || replies[0] != help {
			t.Fatalf("%s: expected help text, got %q", text, replies)
		}
	}
}

func TestSilentInputs(t *testing.T) {
	d, s, _ := newTestDispatcher(t)

	for _, text := range []string{"hello", "", "!", "!frobnicate", "!whereis Ruby", "/help"} {
		if replies := send(t, d, s, text); len(replies) != 0 {
			t.Fatalf("%q should get no reply, got %q", text, replies)
		}
	}
}

func TestStoreFailureGetsGenericReply(t *testing.T) {
	app := newTestAppContext(failingStore{err: errors.New("database is locked")})
	s := &recordingSender{}
	d := NewDispatcher(app, s, nil)

	for _, text := range []string{"!addResource a b c d", "!editResource 1 a b c d", "!whereIs a", "!listResources"} {
		replies := send(t, d, s, text)
		if len(replies) != 1 || replies[0] != GenericFailure {
			t.Fatalf("%s: reply = %q, want generic failure", text, replies)
		}
	}
	if replies := send(t, d, s, "!removeResource 1"); len(replies) != 0 {
		t.Fatalf("remove failure should stay local, got %q", replies)
	}
}

type panicCmd struct{}

func (panicCmd) Execute(*AppContext, Query, *ChannelContext) { panic("boom") }
func (panicCmd) Description() string                         { return "panics" }

func TestPanicIsRecovered(t *testing.T) {
	d, s, app := newTestDispatcher(t)
	app.Commands.RegisterRaw("boom", panicCmd{})

	replies := send(t, d, s, "!boom")
	if len(replies) != 1 || replies[0] != GenericFailure {
		t.Fatalf("reply = %q, want generic failure", replies)
	}
}

func TestNoChatRepliesGoToSink(t *testing.T) {
	app := newTestAppContext(newTestStore(t))
	var out bytes.Buffer
	d := NewDispatcher(app, &recordingSender{}, &out)

	d.Handle(context.Background(), Inbound{Text: "!whereIs Sapphire"})
	if got, want := out.String(), "[MSG]: "+format.NotFound+"\n"; got != want {
		t.Fatalf("sink = %q, want %q", got, want)
	}
}

func TestLongRepliesAreChunked(t *testing.T) {
	d, s, app := newTestDispatcher(t)
	d.limit = 300
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		r := Resource{Resource: fmt.Sprintf("Ore%02d", i), Region: "K1", Island: "N", Description: "Somewhere deep"}
		if _, err := app.Store.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	replies := send(t, d, s, "!listResources")
	if len(replies) < 2 {
		t.Fatalf("expected several chunks, got %d", len(replies))
	}
	for i, chunk := range replies {
		if len([]rune(chunk)) > 300 {
			t.Fatalf("chunk %d is %d runes", i, len([]rune(chunk)))
		}
		if strings.Count(chunk, "```")%2 != 0 {
			t.Fatalf("chunk %d has an unbalanced fence: %q", i, chunk)
		}
	}
	if !strings.Contains(strings.Join(replies, ""), "Ore19") {
		t.Fatalf("last row missing from chunks")
	}
}

func TestHashIsAnOrdinaryCharacter(t *testing.T) {
	d, s, app := newTestDispatcher(t)

	replies := send(t, d, s, "!addResource Gem K5 SE #north")
	if len(replies) != 1 || !strings.Contains(replies[0], `"description": "#north"`) {
		t.Fatalf("add with #north = %q", replies)
	}

	replies = send(t, d, s, "!whereIs #5")
	if len(replies) != 1 || replies[0] != format.NotFound {
		t.Fatalf("whereIs #5 = %q, want %q", replies, format.NotFound)
	}

	replies = send(t, d, s, `!editResource 1 Ruby K5 SE "West coast" #note`)
	want := "Unexpected Parameter '#note'. Usage: '!editResource <id> <resource> <region> <island> <description>'"
	if len(replies) != 1 || replies[0] != want {
		t.Fatalf("edit with extra token = %q, want %q", replies, want)
	}
	rows, _ := app.Store.ListAll(context.Background())
	if len(rows) != 2 || rows[0].Description != "West coast" {
		t.Fatalf("rejected edit changed the store: %+v", rows)
	}
}

// gateCmd blocks until release is closed, reporting each entry on arrived.
type gateCmd struct {
	arrived chan struct{}
	release chan struct{}
}

func (g *gateCmd) Execute(_ *AppContext, _ Query, cc *ChannelContext) {
	g.arrived <- struct{}{}
	<-g.release
	cc.Post("done")
}
func (g *gateCmd) Description() string { return "blocks" }

func TestOverlappingMessagesRunConcurrently(t *testing.T) {
	app := newTestAppContext(newTestStore(t))
	gate := &gateCmd{arrived: make(chan struct{}, 2), release: make(chan struct{})}
	app.Commands.RegisterRaw("wait", gate)
	sender := &recordingSender{}
	d := NewDispatcher(app, sender, nil)

	updates := make(chan tgbotapi.Update, 2)
	updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "!wait", Chat: &tgbotapi.Chat{ID: 1}}}
	updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "!wait", Chat: &tgbotapi.Chat{ID: 2}}}
	close(updates)

	done := make(chan error, 1)
	go func() { done <- pumpUpdates(context.Background(), updates, d, nil) }()

	// Both commands must be inside Execute before either is released.
	for i := 1; i <= 2; i++ {
		select {
		case <-gate.arrived:
		case <-time.After(5 * time.Second):
			close(gate.release)
			t.Fatalf("command %d never started while another was still running", i)
		}
	}
	close(gate.release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("pumpUpdates: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("pumpUpdates did not drain")
	}
	if got := sender.texts(); len(got) != 2 {
		t.Fatalf("expected 2 replies, got %q", got)
	}
}

func TestShutdownWaitsForInflightCommand(t *testing.T) {
	app := newTestAppContext(newTestStore(t))
	gate := &gateCmd{arrived: make(chan struct{}, 1), release: make(chan struct{})}
	app.Commands.RegisterRaw("wait", gate)
	sender := &recordingSender{}
	d := NewDispatcher(app, sender, nil)

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tgbotapi.Update, 1)
	updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "!wait", Chat: &tgbotapi.Chat{ID: 1}}}

	done := make(chan error, 1)
	go func() { done <- pumpUpdates(ctx, updates, d, nil) }()

	select {
	case <-gate.arrived:
	case <-time.After(5 * time.Second):
		t.Fatalf("command never started")
	}
	cancel()

	select {
	case <-done:
		t.Fatalf("pumpUpdates returned before the running command finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(gate.release)

	if err := <-done; err != nil {
		t.Fatalf("pumpUpdates: %v", err)
	}
	if got := sender.texts(); len(got) != 1 || got[0] != "done" {
		t.Fatalf("in-flight reply lost on shutdown: %q", got)
	}
}
