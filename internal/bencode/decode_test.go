package bencode

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/danmuck/bencodectl/internal/testutil/testlog"
	jbencode "github.com/jackpal/bencode-go"
	"github.com/rs/zerolog/log"
)

func mustDecode(t *testing.T, in string) Value {
	t.Helper()
	v, err := DecodeString(in)
	if err != nil {
		t.Fatalf("decode %q: %v", in, err)
	}
	return v
}

func expectKind(t *testing.T, in string, want ErrorKind) *DecodeError {
	t.Helper()
	_, err := DecodeString(in)
	if err == nil {
		t.Fatalf("decode %q: expected %s, got nil error", in, want)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("decode %q: expected *DecodeError, got %T (%v)", in, err, err)
	}
	if de.Kind != want {
		t.Fatalf("decode %q: expected %s, got %s (%v)", in, want, de.Kind, err)
	}
	if !errors.Is(err, want.sentinel()) {
		t.Fatalf("decode %q: errors.Is(%v) failed for %v", in, want.sentinel(), err)
	}
	return de
}

// encodeFixture produces well-formed input with an independent encoder.
func encodeFixture(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jbencode.Marshal(&buf, v); err != nil {
		t.Fatalf("fixture encode %#v: %v", v, err)
	}
	return buf.String()
}

func TestDecodeScenarios(t *testing.T) {
	testlog.Start(t)

	cases := []struct {
		in   string
		want Value
	}{
		{in: "i623e", want: Integer(623)},
		{in: "i-2131e", want: Integer(-2131)},
		{in: "i0e", want: Integer(0)},
		{in: "11:hello world", want: Text("hello world")},
		{in: "0:", want: Text("")},
		{in: "li123ei456ei789ee", want: List(Integer(123), Integer(456), Integer(789))},
		{in: "le", want: List()},
		{in: "de", want: Dict(nil)},
		{
			in: "d5:hello5:world5:valuei123ee",
			want: Dict(map[string]Value{
				"hello": Text("world"),
				"value": Integer(123),
			}),
		},
		{
			in: "d4:listl1:ai-1ee4:nestd1:kli0eeee",
			want: Dict(map[string]Value{
				"list": List(Text("a"), Integer(-1)),
				"nest": Dict(map[string]Value{"k": List(Integer(0))}),
			}),
		},
	}

	for _, tc := range cases {
		got := mustDecode(t, tc.in)
		if !got.Equal(tc.want) {
			t.Fatalf("decode %q: got %s want %s", tc.in, got, tc.want)
		}
		log.Debug().Str("input", tc.in).Str("value", got.String()).Msg("decoded")
	}
}

func TestDecodeIntegerRange(t *testing.T) {
	testlog.Start(t)

	values := []int64{0, 1, -1, 9, 10, -10, 623, -2131, math.MaxInt64, math.MinInt64}
	for _, n := range values {
		in := "i" + strconv.FormatInt(n, 10) + "e"
		got, ok := mustDecode(t, in).AsInt()
		if !ok || got != n {
			t.Fatalf("decode %q: got %d ok=%v", in, got, ok)
		}
	}
}

func TestDecodeIntegerRejectsNonCanonical(t *testing.T) {
	testlog.Start(t)

	for _, body := range []string{"-0", "00", "0123", "-0123", "+5", "-", "", "1x", " 1", "9223372036854775808"} {
		expectKind(t, "i"+body+"e", MalformedInteger)
	}
}

func TestDecodeTextLengthCountsBytes(t *testing.T) {
	testlog.Start(t)

	for _, s := range []string{"", "a", "spam", "héllo", "日本語", "with:colon", "e", "\x00\xff"} {
		in := strconv.Itoa(len(s)) + ":" + s
		got, ok := mustDecode(t, in).AsText()
		if !ok || got != s {
			t.Fatalf("decode %q: got %q ok=%v", in, got, ok)
		}
	}
}

func TestDecodeTextPrematureEnd(t *testing.T) {
	testlog.Start(t)

	de := expectKind(t, "11:hello w", UnexpectedEnd)
	if de.Remaining != 4 {
		t.Fatalf("expected 4 bytes remaining, got %d", de.Remaining)
	}
	if de.Rule != RuleString {
		t.Fatalf("unexpected rule: %s", de.Rule)
	}
}

func TestDecodeTextMalformedLength(t *testing.T) {
	testlog.Start(t)

	expectKind(t, "1a:x", MalformedLength)
	expectKind(t, "99999999999999999999:x", MalformedLength)
}

func TestDecodeRejectsUnrecognizedTag(t *testing.T) {
	testlog.Start(t)

	for _, in := range []string{"x", "e", "-1:a", ":", "li1ezi2ee"} {
		de := expectKind(t, in, UnrecognizedTag)
		log.Debug().Str("input", in).Str("tag", string(de.Tag)).Msg("rejected")
	}
	de := expectKind(t, "q", UnrecognizedTag)
	if de.Tag != 'q' || de.Offset != 0 {
		t.Fatalf("unexpected tag report: %+v", de)
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	testlog.Start(t)

	expectKind(t, "", UnexpectedEnd)
	if _, err := Decode(nil); !errors.Is(err, ErrUnexpectedEnd) {
		t.Fatalf("expected ErrUnexpectedEnd for nil input, got %v", err)
	}
}

func TestDecodeListPreservesOrder(t *testing.T) {
	testlog.Start(t)

	items := []any{"zeta", int64(3), "alpha", []any{int64(1), "x"}, int64(-7)}
	in := encodeFixture(t, items)
	got := mustDecode(t, in)
	want := List(Text("zeta"), Integer(3), Text("alpha"), List(Integer(1), Text("x")), Integer(-7))
	if !got.Equal(want) {
		t.Fatalf("decode %q: got %s want %s", in, got, want)
	}
	first, _ := got.Index(0)
	if s, _ := first.AsText(); s != "zeta" {
		t.Fatalf("order not preserved: %s", got)
	}
}

func TestDecodeDictionaryIgnoresInputKeyOrder(t *testing.T) {
	testlog.Start(t)

	sorted := mustDecode(t, "d1:ai1e1:bi2e1:ci3ee")
	unsorted := mustDecode(t, "d1:ci3e1:ai1e1:bi2ee")
	if !sorted.Equal(unsorted) {
		t.Fatalf("expected equal dictionaries: %s vs %s", sorted, unsorted)
	}
	keys := unsorted.Keys()
	if strings.Join(keys, ",") != "a,b,c" {
		t.Fatalf("keys not canonical: %v", keys)
	}

	fixture := map[string]any{
		"announce": "udp://tracker",
		"info": map[string]any{
			"length": int64(1024),
			"name":   "file.bin",
		},
		"urls": []any{"a", "b"},
	}
	got := mustDecode(t, encodeFixture(t, fixture))
	want := Dict(map[string]Value{
		"announce": Text("udp://tracker"),
		"info": Dict(map[string]Value{
			"length": Integer(1024),
			"name":   Text("file.bin"),
		}),
		"urls": List(Text("a"), Text("b")),
	})
	if !got.Equal(want) {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestDecodeDictionaryDuplicateKeyLastWins(t *testing.T) {
	testlog.Start(t)

	got := mustDecode(t, "d1:ki1e1:ki2ee")
	v, ok := got.Get("k")
	if n, _ := v.AsInt(); !ok || n != 2 || got.Len() != 1 {
		t.Fatalf("expected last write to win, got %s", got)
	}
}

func TestDecodeDictionaryNonStringKey(t *testing.T) {
	testlog.Start(t)

	for _, in := range []string{"di1ei2ee", "dli1ee1:ae", "dd1:a1:bee", "d1x:ai1ee"} {
		expectKind(t, in, NonStringKey)
	}
}

func TestDecodeTruncationYieldsUnexpectedEnd(t *testing.T) {
	testlog.Start(t)

	inputs := []string{
		"i623e",
		"i-2131e",
		"11:hello world",
		"0:",
		"li123ei456ei789ee",
		"le",
		"d5:hello5:world5:valuei123ee",
		"de",
		"d4:listl1:ai-1ee4:nestd1:kli0eeee",
		encodeFixture(t, map[string]any{"a": []any{int64(1), "two"}, "b": "c"}),
	}
	for _, in := range inputs {
		for cut := len(in) - 1; cut >= 0; cut-- {
			truncated := in[:cut]
			_, err := DecodeString(truncated)
			if !errors.Is(err, ErrUnexpectedEnd) {
				t.Fatalf("truncate %q to %q: expected ErrUnexpectedEnd, got %v", in, truncated, err)
			}
		}
	}
}

func TestDecodeErrorsPropagateFromNestedItems(t *testing.T) {
	testlog.Start(t)

	expectKind(t, "li1ei-0ee", MalformedInteger)
	expectKind(t, "d1:ali1ex1:be", UnrecognizedTag)
	expectKind(t, "l5:abce", UnexpectedEnd)
}

func TestDecodeTrailingData(t *testing.T) {
	testlog.Start(t)

	de := expectKind(t, "i1ei2e", TrailingData)
	if de.Offset != 3 {
		t.Fatalf("unexpected trailing offset: %d", de.Offset)
	}

	v, err := Decoder{AllowTrailing: true}.Decode([]byte("i1ejunk"))
	if err != nil {
		t.Fatalf("allow trailing: %v", err)
	}
	if n, _ := v.AsInt(); n != 1 {
		t.Fatalf("unexpected value: %s", v)
	}

	v, consumed, err := DecodePrefix([]byte("4:spami7e"))
	if err != nil {
		t.Fatalf("decode prefix: %v", err)
	}
	if consumed != 6 || !v.Equal(Text("spam")) {
		t.Fatalf("unexpected prefix result: %s consumed=%d", v, consumed)
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	testlog.Start(t)

	deep := strings.Repeat("l", DefaultMaxDepth+1) + strings.Repeat("e", DefaultMaxDepth+1)
	expectKind(t, deep, DepthExceeded)

	ok := strings.Repeat("l", DefaultMaxDepth) + strings.Repeat("e", DefaultMaxDepth)
	mustDecode(t, ok)

	if _, err := (Decoder{}).Decode([]byte(deep)); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("zero decoder should fall back to the default limit, got %v", err)
	}
	if _, err := (Decoder{MaxDepth: 2}).Decode([]byte("ld1:alleee")); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
}

func TestDecodeErrorMessageNamesContext(t *testing.T) {
	testlog.Start(t)

	_, err := DecodeString("11:hello w")
	msg := err.Error()
	if !strings.Contains(msg, "string") || !strings.Contains(msg, "4 bytes remaining") {
		t.Fatalf("unexpected message: %q", msg)
	}
	_, err = DecodeString("i01e")
	if !strings.Contains(err.Error(), "leading zero") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestDecodeDepthCeilingHoldsForEveryDecoder(t *testing.T) {
	testlog.Start(t)

	levels := 2 << 20
	deep := []byte(strings.Repeat("l", levels) + strings.Repeat("e", levels))
	for _, d := range []Decoder{{}, {MaxDepth: 0}, {MaxDepth: -1}, {MaxDepth: math.MaxInt}} {
		_, err := d.Decode(deep)
		var de *DecodeError
		if !errors.As(err, &de) || de.Kind != DepthExceeded {
			t.Fatalf("decoder %+v: expected DepthExceeded, got %v", d, err)
		}
		if de.Offset > MaxNestingDepth {
			t.Fatalf("decoder %+v: nesting passed the ceiling, offset %d", d, de.Offset)
		}
	}

	atCeiling := strings.Repeat("l", MaxNestingDepth) + strings.Repeat("e", MaxNestingDepth)
	if _, err := (Decoder{MaxDepth: MaxNestingDepth}).Decode([]byte(atCeiling)); err != nil {
		t.Fatalf("ceiling depth rejected: %v", err)
	}
	if _, err := (Decoder{MaxDepth: math.MaxInt}).Decode([]byte("l" + atCeiling + "e")); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected clamp to MaxNestingDepth, got %v", err)
	}
}

// The dispatcher only enters the string rule on a digit, so a signed
// prefix has to be fed to the rule directly.
func TestTextRuleRejectsNegativeLength(t *testing.T) {
	testlog.Start(t)

	p := parser{cur: cursor{data: []byte("-3:abc")}}
	_, err := p.text(RuleString)
	if !errors.Is(err, ErrMalformedLength) || !errors.Is(err, errNegativeLength) {
		t.Fatalf("expected negative length rejection, got %v", err)
	}
}
