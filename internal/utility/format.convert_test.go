package utility

import (
	"encoding/json"
	"testing"
)

func TestP2Int64(t *testing.T) {
	cases := []struct {
		input interface{}
		want  int64
	}{
		{json.Number("42"), 42},
		{"15", 15},
		{"abc", 0},
		{"", 0},
		{nil, 0},
		{int64(7), 7},
		{3, 3},
	}
	for _, c := range cases {
		if got := P2Int64(c.input); got != c.want {
			t.Errorf("P2Int64(%v): got %d, want %d", c.input, got, c.want)
		}
	}
}

func TestString2ObjectID(t *testing.T) {
	hex := "64f0c1a2b3c4d5e6f7a8b9c0"
	id := String2ObjectID(hex)
	if id.IsZero() {
		t.Fatal("hex hợp lệ không được trả về zero ObjectID")
	}
	if id.Hex() != hex {
		t.Errorf("round-trip hex sai: got %s, want %s", id.Hex(), hex)
	}
}

func TestString2ObjectIDInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		if !String2ObjectID(input).IsZero() {
			t.Errorf("chuỗi %q không hợp lệ phải trả về zero ObjectID", input)
		}
	}
}
