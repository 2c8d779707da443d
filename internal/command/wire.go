package command

import (
	"fmt"

	"github.com/valyala/fastjson"
)

const (
	fieldCommand = "command"
	fieldEchoed  = "echoed"
	fieldA       = "a"
	fieldB       = "b"
)

// Serialize renders c as one JSON line terminated by '\n'.
func Serialize(c Command) string {
	var arena fastjson.Arena
	obj := arena.NewObject()
	obj.Set(fieldCommand, arena.NewString(c.Name()))
	switch c.Kind {
	case KindEcho:
		obj.Set(fieldEchoed, arena.NewString(c.Message))
	case KindAdd:
		obj.Set(fieldA, arena.NewNumberInt(int(c.A)))
		obj.Set(fieldB, arena.NewNumberInt(int(c.B)))
	}
	return string(obj.MarshalTo(nil)) + "\n"
}

// Deserialize parses a line produced by Serialize. Unknown fields are ignored.
func Deserialize(line string) (Command, error) {
	var p fastjson.Parser
	v, err := p.Parse(line)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	if v.Type() != fastjson.TypeObject {
		return Command{}, fmt.Errorf("%w: expected object, got %s", ErrMalformedLine, v.Type())
	}

	nameVal := v.Get(fieldCommand)
	if nameVal == nil {
		return Command{}, ErrNoCommand
	}
	name, err := nameVal.StringBytes()
	if err != nil {
		return Command{}, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, fieldCommand, err)
	}
	kind, ok := lookup(string(name))
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	switch kind {
	case KindTest:
		return Test(), nil
	case KindHealth:
		return Health(), nil
	case KindEcho:
		echoed := v.Get(fieldEchoed)
		if echoed == nil {
			return Command{}, fmt.Errorf("%w: %s", ErrMissingArgument, fieldEchoed)
		}
		msg, err := echoed.StringBytes()
		if err != nil {
			return Command{}, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, fieldEchoed, err)
		}
		return Echo(string(msg)), nil
	default:
		a, err := wireOperand(v, fieldA)
		if err != nil {
			return Command{}, err
		}
		b, err := wireOperand(v, fieldB)
		if err != nil {
			return Command{}, err
		}
		return Add(a, b), nil
	}
}

func wireOperand(v *fastjson.Value, field string) (int32, error) {
	raw := v.Get(field)
	if raw == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingArgument, field)
	}
	n, err := raw.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, field, err)
	}
	if !checkInt32(n) {
		return 0, fmt.Errorf("%w: %s=%d out of int32 range", ErrInvalidArgument, field, n)
	}
	return int32(n), nil
}
