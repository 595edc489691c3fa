package main

import (
	"fmt"
	"strings"
)

// CommandPrefix marks a chat message as a bot command.
const CommandPrefix = "!"

// Command is the interface that all bot commands must implement
type Command interface {
	Execute(app *AppContext, q Query, c *ChannelContext)
	Description() string
}

// CommandDescriptor binds a command name to its positional parameters.
// Commands with RawArgs take no named parameters and read q.Args instead.
type CommandDescriptor struct {
	Name    string
	Params  []string
	RawArgs bool
	Command Command
}

// Usage renders the descriptor as "!name <p1> <p2>".
func (d CommandDescriptor) Usage() string {
	var b strings.Builder
	b.WriteString(CommandPrefix + d.Name)
	for _, p := range d.Params {
		b.WriteString(" <" + p + ">")
	}
	return b.String()
}

// CommandRegistry holds the commands in registration order.
// It is filled once at startup and only read afterwards.
type CommandRegistry struct {
	order    []string
	commands map[string]CommandDescriptor
}

// NewCommandRegistry creates a new registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]CommandDescriptor),
	}
}

// Register adds a command to the registry. Registering the same name twice
// is a programming error and panics.
func (r *CommandRegistry) Register(name string, params []string, cmd Command) {
	r.register(CommandDescriptor{Name: name, Params: params, Command: cmd})
}

// RegisterRaw adds a command that receives the raw argument tokens.
func (r *CommandRegistry) RegisterRaw(name string, cmd Command) {
	r.register(CommandDescriptor{Name: name, RawArgs: true, Command: cmd})
}

func (r *CommandRegistry) register(d CommandDescriptor) {
	if _, exists := r.commands[d.Name]; exists {
		panic(fmt.Sprintf("command %q registered twice", d.Name))
	}
	r.order = append(r.order, d.Name)
	r.commands[d.Name] = d
}

// Lookup returns the descriptor registered under name.
func (r *CommandRegistry) Lookup(name string) (CommandDescriptor, bool) {
	d, ok := r.commands[name]
	return d, ok
}

// Commands returns every descriptor in registration order.
func (r *CommandRegistry) Commands() []CommandDescriptor {
	out := make([]CommandDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// HelpText lists the usage of every registered command plus !help.
func (r *CommandRegistry) HelpText() string {
	var b strings.Builder
	b.WriteString("```Usage: " + CommandPrefix + "<command> [options]\n\nCommands:")
	for _, d := range r.Commands() {
		b.WriteString("\n\t" + d.Usage())
	}
	b.WriteString("\n\t" + CommandPrefix + "help")
	b.WriteString("```")
	return b.String()
}
