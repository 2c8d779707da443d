package bencode

// cursor is a forward-only view over the input with one byte of lookahead.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) peek() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	return c.data[c.pos], true
}

func (c *cursor) advance() {
	if c.pos < len(c.data) {
		c.pos++
	}
}

func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

// until consumes bytes up to, but not including, delim. It reports false
// when the input ends before delim is found.
func (c *cursor) until(delim byte) ([]byte, bool) {
	start := c.pos
	for c.pos < len(c.data) {
		if c.data[c.pos] == delim {
			return c.data[start:c.pos], true
		}
		c.pos++
	}
	return nil, false
}

// take consumes n bytes. The caller checks remaining first.
func (c *cursor) take(n int) []byte {
	out := c.data[c.pos : c.pos+n]
	c.pos += n
	return out
}
