package bencode

import (
	"errors"
	"strconv"
)

const (
	// DefaultMaxDepth bounds container nesting for DefaultDecoder.
	DefaultMaxDepth = 512
	// MaxNestingDepth is the hard ceiling on nesting for every Decoder.
	MaxNestingDepth = 1 << 14
)

// Decoder holds decode options. The zero Decoder uses DefaultMaxDepth and
// rejects trailing data.
type Decoder struct {
	// MaxDepth limits nested lists and dictionaries. Zero or less means
	// DefaultMaxDepth; values above MaxNestingDepth are clamped to it.
	MaxDepth int
	// AllowTrailing accepts bytes after the first complete value.
	AllowTrailing bool
}

func DefaultDecoder() Decoder {
	return Decoder{MaxDepth: DefaultMaxDepth}
}

// Decode decodes one complete value from input using DefaultDecoder.
func Decode(input []byte) (Value, error) {
	return DefaultDecoder().Decode(input)
}

// DecodeString is Decode over a string.
func DecodeString(input string) (Value, error) {
	return Decode([]byte(input))
}

// DecodePrefix decodes the first value of input and reports how many bytes
// it consumed.
func DecodePrefix(input []byte) (Value, int, error) {
	return DefaultDecoder().DecodePrefix(input)
}

func (d Decoder) Decode(input []byte) (Value, error) {
	v, n, err := d.DecodePrefix(input)
	if err != nil {
		return Value{}, err
	}
	if !d.AllowTrailing && n < len(input) {
		return Value{}, &DecodeError{Kind: TrailingData, Rule: RuleValue, Offset: n}
	}
	return v, nil
}

func (d Decoder) DecodePrefix(input []byte) (Value, int, error) {
	p := parser{cur: cursor{data: input}, maxDepth: d.depthLimit()}
	v, err := p.value()
	if err != nil {
		return Value{}, 0, err
	}
	return v, p.cur.pos, nil
}

func (d Decoder) depthLimit() int {
	switch {
	case d.MaxDepth <= 0:
		return DefaultMaxDepth
	case d.MaxDepth > MaxNestingDepth:
		return MaxNestingDepth
	default:
		return d.MaxDepth
	}
}

type parser struct {
	cur      cursor
	depth    int
	maxDepth int
}

func (p *parser) fail(kind ErrorKind, rule Rule, offset int, cause error) *DecodeError {
	return &DecodeError{Kind: kind, Rule: rule, Offset: offset, Err: cause}
}

func (p *parser) unexpectedEnd(rule Rule) *DecodeError {
	return p.fail(UnexpectedEnd, rule, len(p.cur.data), nil)
}

func (p *parser) value() (Value, error) {
	b, ok := p.cur.peek()
	if !ok {
		return Value{}, p.unexpectedEnd(RuleValue)
	}
	switch {
	case b == 'i':
		return p.integer()
	case b == 'd':
		return p.dictionary()
	case b == 'l':
		return p.list()
	case isDigit(b):
		s, err := p.text(RuleString)
		if err != nil {
			return Value{}, err
		}
		return Text(s), nil
	default:
		return Value{}, &DecodeError{Kind: UnrecognizedTag, Rule: RuleValue, Offset: p.cur.pos, Tag: b}
	}
}

func (p *parser) integer() (Value, error) {
	start := p.cur.pos
	p.cur.advance()
	body, ok := p.cur.until('e')
	if !ok {
		return Value{}, p.unexpectedEnd(RuleInteger)
	}
	p.cur.advance()
	n, err := parseCanonicalInt(body)
	if err != nil {
		return Value{}, p.fail(MalformedInteger, RuleInteger, start, err)
	}
	return Integer(n), nil
}

// parseCanonicalInt accepts an optional '-' followed by digits, with no
// leading zero and no negative zero.
func parseCanonicalInt(body []byte) (int64, error) {
	s := string(body)
	if len(s) >= 2 && s[0] == '-' && s[1] == '0' {
		return 0, errNegativeZero
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, errLeadingZero
	}
	digits := s
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i]) {
			return 0, errNonDigit
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

// text runs the string rule and returns the raw payload.
func (p *parser) text(rule Rule) (string, error) {
	start := p.cur.pos
	prefix, ok := p.cur.until(':')
	if !ok {
		return "", p.unexpectedEnd(rule)
	}
	n, err := strconv.ParseInt(string(prefix), 10, 64)
	if err != nil {
		return "", p.fail(MalformedLength, rule, start, err)
	}
	if n < 0 {
		return "", p.fail(MalformedLength, rule, start, errNegativeLength)
	}
	p.cur.advance()
	if avail := int64(p.cur.remaining()); avail < n {
		p.cur.take(int(avail))
		e := p.unexpectedEnd(rule)
		e.Remaining = n - avail
		return "", e
	}
	return string(p.cur.take(int(n))), nil
}

func (p *parser) enter(rule Rule) error {
	p.depth++
	limit := p.maxDepth
	if limit <= 0 || limit > MaxNestingDepth {
		limit = MaxNestingDepth
	}
	if p.depth > limit {
		return p.fail(DepthExceeded, rule, p.cur.pos, nil)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) list() (Value, error) {
	if err := p.enter(RuleList); err != nil {
		return Value{}, err
	}
	defer p.leave()
	p.cur.advance()

	items := make([]Value, 0)
	for {
		b, ok := p.cur.peek()
		if !ok {
			return Value{}, p.unexpectedEnd(RuleList)
		}
		if b == 'e' {
			break
		}
		item, err := p.value()
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	p.cur.advance()
	return Value{kind: KindList, list: items}, nil
}

func (p *parser) dictionary() (Value, error) {
	if err := p.enter(RuleDictionary); err != nil {
		return Value{}, err
	}
	defer p.leave()
	p.cur.advance()

	entries := make(map[string]Value)
	for {
		b, ok := p.cur.peek()
		if !ok {
			return Value{}, p.unexpectedEnd(RuleDictionary)
		}
		if b == 'e' {
			break
		}
		key, err := p.key(b)
		if err != nil {
			return Value{}, err
		}
		item, err := p.value()
		if err != nil {
			return Value{}, err
		}
		// last duplicate wins
		entries[key] = item
	}
	p.cur.advance()
	return Value{kind: KindDict, dict: entries}, nil
}

// key parses a dictionary key with the string rule. Anything that is not
// a well-formed length prefix is a NonStringKey; running out of input
// stays UnexpectedEnd.
func (p *parser) key(lead byte) (string, error) {
	start := p.cur.pos
	if !isDigit(lead) {
		return "", &DecodeError{Kind: NonStringKey, Rule: RuleDictionary, Offset: start, Tag: lead}
	}
	s, err := p.text(RuleDictionary)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) && de.Kind == MalformedLength {
			return "", p.fail(NonStringKey, RuleDictionary, start, de)
		}
		return "", err
	}
	return s, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
