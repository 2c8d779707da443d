package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNoCommand       = errors.New("command: no command given")
	ErrUnknownCommand  = errors.New("command: unknown command")
	ErrMissingArgument = errors.New("command: missing argument")
	ErrInvalidArgument = errors.New("command: invalid argument")
	ErrMalformedLine   = errors.New("command: malformed line")
)

// Kind is the closed set of supported commands.
type Kind int

const (
	KindTest Kind = iota + 1
	KindHealth
	KindEcho
	KindAdd
)

const (
	NameTest   = "test"
	NameHealth = "health"
	NameEcho   = "echo"
	NameAdd    = "add"

	// aliasHealth is the older spelling of the health check.
	aliasHealth = "health_check"
)

// Command is one parsed command. Only the fields of its Kind are set.
type Command struct {
	Kind    Kind
	Message string
	A, B    int32
}

func Test() Command {
	return Command{Kind: KindTest}
}

func Health() Command {
	return Command{Kind: KindHealth}
}

func Echo(message string) Command {
	return Command{Kind: KindEcho, Message: message}
}

func Add(a, b int32) Command {
	return Command{Kind: KindAdd, A: a, B: b}
}

// Name is the wire name of the command.
func (c Command) Name() string {
	switch c.Kind {
	case KindTest:
		return NameTest
	case KindHealth:
		return NameHealth
	case KindEcho:
		return NameEcho
	case KindAdd:
		return NameAdd
	default:
		return ""
	}
}

// Equal compares kind and the fields that kind uses.
func (c Command) Equal(o Command) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindEcho:
		return c.Message == o.Message
	case KindAdd:
		return c.A == o.A && c.B == o.B
	default:
		return true
	}
}

func lookup(name string) (Kind, bool) {
	switch name {
	case NameTest:
		return KindTest, true
	case NameHealth, aliasHealth:
		return KindHealth, true
	case NameEcho:
		return KindEcho, true
	case NameAdd:
		return KindAdd, true
	default:
		return 0, false
	}
}

// Parse maps a command name plus positional arguments to a Command.
// echo joins its arguments with single spaces; add takes two int32 operands.
func Parse(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrNoCommand
	}
	kind, ok := lookup(args[0])
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	rest := args[1:]
	switch kind {
	case KindTest:
		return Test(), nil
	case KindHealth:
		return Health(), nil
	case KindEcho:
		return Echo(strings.Join(rest, " ")), nil
	default:
		a, err := parseOperand(rest, 0, "a")
		if err != nil {
			return Command{}, err
		}
		b, err := parseOperand(rest, 1, "b")
		if err != nil {
			return Command{}, err
		}
		return Add(a, b), nil
	}
}

func parseOperand(args []string, idx int, name string) (int32, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	n, err := strconv.ParseInt(args[idx], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", ErrInvalidArgument, name, args[idx], err)
	}
	return int32(n), nil
}

// Execute runs c and returns its textual output.
func Execute(c Command) (string, error) {
	switch c.Kind {
	case KindTest:
		return "ok", nil
	case KindHealth:
		return "healthy", nil
	case KindEcho:
		return c.Message, nil
	case KindAdd:
		return strconv.FormatInt(Sum(c.A, c.B), 10), nil
	default:
		return "", fmt.Errorf("%w: kind %d", ErrUnknownCommand, c.Kind)
	}
}

// Sum adds the operands in 64 bits so int32 extremes cannot overflow.
func Sum(a, b int32) int64 {
	return int64(a) + int64(b)
}

func checkInt32(n int64) bool {
	return n >= math.MinInt32 && n <= math.MaxInt32
}
