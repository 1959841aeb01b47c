// Package protocol speaks the line-based engine protocol: one command per
// input line, one response line per command.
package protocol

import (
	"errors"
	"strings"

	"github.com/kballard/go-shellquote"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformed      = errors.New("malformed command")
)

type Kind int

const (
	Unknown Kind = iota
	Start
	Turn
	Begin
	End
	About
)

var keywords = map[string]Kind{
	"START": Start,
	"TURN":  Turn,
	"BEGIN": Begin,
	"END":   End,
	"ABOUT": About,
}

func (k Kind) String() string {
	for keyword, kind := range keywords {
		if kind == k {
			return keyword
		}
	}
	return "UNKNOWN"
}

// Command is an immutable parsed input line.
type Command struct {
	Kind Kind
	Args []string
	Raw  string
}

// ParseCommand splits line into a keyword and its arguments. The keyword is
// case-insensitive. An empty line parses to an Unknown command with no Raw text.
func ParseCommand(line string) Command {
	raw := strings.TrimSpace(line)
	fields, err := shellquote.Split(raw)
	if err != nil {
		// Unbalanced quotes; fall back to plain whitespace splitting
		fields = strings.Fields(raw)
	}
	if len(fields) == 0 {
		return Command{Kind: Unknown, Raw: raw}
	}

	kind, ok := keywords[strings.ToUpper(fields[0])]
	if !ok {
		kind = Unknown
	}
	return Command{Kind: kind, Args: fields[1:], Raw: raw}
}
