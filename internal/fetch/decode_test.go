package fetch

import (
	"errors"
	"fmt"
	"testing"
)

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"utf8", []byte("Lesões"), "Lesões"},
		{"bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":1}`)...), `{"a":1}`},
		{"latin1 fallback", []byte("Les\xf5es"), "Lesões"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBody(tt.in)
			if err != nil {
				t.Fatalf("DecodeBody: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("resolve: %w", newError(KindParse, "parse", base))

	if !IsKind(err, KindParse) {
		t.Error("IsKind should see through wrapping")
	}
	if IsKind(err, KindNetwork) {
		t.Error("IsKind matched the wrong kind")
	}
	if KindOf(err) != KindParse {
		t.Errorf("KindOf = %q", KindOf(err))
	}
	if !errors.Is(err, base) {
		t.Error("Unwrap should expose the cause")
	}
	if IsKind(base, KindParse) || KindOf(base) != "" {
		t.Error("plain errors have no kind")
	}
	if got := (&Error{Kind: KindCache, Op: "cache load"}).Error(); got != "cache load: cache error" {
		t.Errorf("Error() = %q", got)
	}
}
