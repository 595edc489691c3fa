package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// runConsole feeds every line of in through the dispatcher as a message with
// no chat destination, so replies land on out. It returns when in is
// exhausted or ctx is cancelled.
func runConsole(ctx context.Context, app *AppContext, in io.Reader, out io.Writer) error {
	d := NewDispatcher(app, nil, out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		d.Handle(ctx, Inbound{Text: line})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading console input: %w", err)
	}
	return nil
}
