package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

// UserError is an error whose message is meant for the chat.
type UserError interface {
	error
	UserMessage() string
}

// MissingParameterError reports an argument count that does not match the
// command's declared parameters. Param is empty when there were too many
// tokens; Extra then holds the first unexpected one.
type MissingParameterError struct {
	Command string
	Param   string
	Extra   string
	Usage   string
}

func (e *MissingParameterError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: unexpected parameter %q", e.Command, e.Extra)
	}
	return fmt.Sprintf("%s: missing parameter %q", e.Command, e.Param)
}

func (e *MissingParameterError) UserMessage() string {
	if e.Param == "" {
		return fmt.Sprintf("Unexpected Parameter '%s'. Usage: '%s'", e.Extra, e.Usage)
	}
	return fmt.Sprintf("Missing Parameter '%s'. Usage: '%s'", e.Param, e.Usage)
}

// InvalidParameterError reports a value that could not be converted.
type InvalidParameterError struct {
	Param string
	Value string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("parameter %q: %q is not a number", e.Param, e.Value)
}

func (e *InvalidParameterError) UserMessage() string {
	return fmt.Sprintf("Invalid Parameter '%s': '%s' is not a number.", e.Param, e.Value)
}

// Query maps declared parameter names to the tokens the user supplied.
type Query struct {
	Params map[string]string
	Args   []string
}

// Get returns the value bound to name, or "" when it is not declared.
func (q Query) Get(name string) string {
	return q.Params[name]
}

// Int parses the value bound to name as a base-10 integer.
func (q Query) Int(name string) (int64, error) {
	raw := q.Params[name]
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &InvalidParameterError{Param: name, Value: raw}
	}
	return v, nil
}

// ParseCommandLine splits a chat line into a command name and its
// positional arguments. ok is false for anything that is not a command.
func ParseCommandLine(text string) (name string, args []string, ok bool) {
	if !strings.HasPrefix(text, CommandPrefix) {
		return "", nil, false
	}

	tokens, err := shellquote.Split(text)
	if err != nil {
		// Unbalanced quotes or a trailing backslash: fall back to plain
		// whitespace splitting so the binder can still answer with a usage line.
		tokens = strings.Fields(text)
	}
	if len(tokens) == 0 {
		return "", nil, false
	}

	name = strings.TrimPrefix(tokens[0], CommandPrefix)
	if name == "" {
		return "", nil, false
	}
	return name, tokens[1:], true
}

// IsHelp reports whether name routes to the help pseudo-command.
func IsHelp(name string) bool {
	return strings.HasPrefix(name, "help")
}

// Bind maps positional args onto the descriptor's parameters.
func Bind(d CommandDescriptor, args []string) (Query, error) {
	q := Query{Params: make(map[string]string, len(d.Params)), Args: args}
	if len(d.Params) == 0 {
		return q, nil
	}

	if len(args) != len(d.Params) {
		e := &MissingParameterError{Command: d.Name, Usage: d.Usage()}
		if len(args) < len(d.Params) {
			e.Param = d.Params[len(args)]
		} else {
			e.Extra = args[len(d.Params)]
		}
		return Query{}, e
	}

	for i, name := range d.Params {
		q.Params[name] = args[i]
	}
	return q, nil
}
