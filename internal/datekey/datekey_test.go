package datekey

import (
	"sort"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		raw  string
		want Key
	}{
		{"14.1.26 TAR", Key{2026, 1, 14, PeriodAfternoon}},
		{"1.1.85", Key{1985, 1, 1, NoPeriod}},
		{"25.9.04 TAR", Key{2004, 9, 25, PeriodAfternoon}},
		{"31.12.79 NTE", Key{2079, 12, 31, PeriodNight}},
		{"1.6.80 MAN", Key{1980, 6, 1, PeriodMorning}},
		{"3.3.99 xyz", Key{1999, 3, 3, NoPeriod}},
		{"7.2.2024 noite", Key{2024, 2, 7, PeriodNight}},
		{"Sábado 25.9.04 TAR", Key{2004, 9, 25, PeriodAfternoon}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw, fixedNow)
			if got == nil {
				t.Fatalf("Parse(%q) = nil, want %v", tt.raw, tt.want)
			}
			if *got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.raw, *got, tt.want)
			}
		})
	}
}

func TestParseTokenized(t *testing.T) {
	tests := []struct {
		raw  string
		want Key
	}{
		{"Qui 13 Jan NTE", Key{2026, 1, 13, PeriodNight}},
		{"Qua 22 Set TAR", Key{2026, 9, 22, PeriodAfternoon}},
		{"Qui 23 Set", Key{2026, 9, 23, NoPeriod}},
		{"Thu 5 Oct MORNING", Key{2026, 10, 5, PeriodMorning}},
		{"Seg 2 Fev ???", Key{2026, 2, 2, NoPeriod}},
		{"10-Dez-25 MAN", Key{2025, 12, 10, PeriodMorning}},
		{"13 jan 26", Key{2026, 1, 13, NoPeriod}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw, fixedNow)
			if got == nil {
				t.Fatalf("Parse(%q) = nil, want %v", tt.raw, tt.want)
			}
			if *got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.raw, *got, tt.want)
			}
		})
	}
}

func TestParseUnparseable(t *testing.T) {
	for _, raw := range []string{"", "   ", "—", "hoje", "Qui Jan NTE", "Qui 13 Foo", "99.99.99", "0 Jan"} {
		t.Run(raw, func(t *testing.T) {
			if got := Parse(raw, fixedNow); got != nil {
				t.Errorf("Parse(%q) = %v, want nil", raw, *got)
			}
		})
	}
}

func TestMissingAndUnknownPeriodShareRank(t *testing.T) {
	missing := Parse("Qui 23 Set", fixedNow)
	unknown := Parse("Qui 23 Set ZZZ", fixedNow)
	if missing == nil || unknown == nil {
		t.Fatal("expected both to parse")
	}
	if Compare(*missing, *unknown) != 0 {
		t.Errorf("missing %v and unknown %v should compare equal", *missing, *unknown)
	}
	morning := Parse("Qui 23 Set MAN", fixedNow)
	if !Less(*unknown, *morning) {
		t.Errorf("unknown period %v should sort before morning %v", *unknown, *morning)
	}
}

func TestCompareOrdering(t *testing.T) {
	keys := []Key{
		{2026, 9, 23, PeriodAfternoon},
		{2025, 12, 31, PeriodNight},
		{2026, 9, 23, PeriodNight},
		{2026, 1, 1, NoPeriod},
	}
	sort.Slice(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })

	want := []Key{
		{2025, 12, 31, PeriodNight},
		{2026, 1, 1, NoPeriod},
		{2026, 9, 23, PeriodAfternoon},
		{2026, 9, 23, PeriodNight},
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
}

func TestExpandYear(t *testing.T) {
	tests := map[int]int{0: 2000, 26: 2026, 79: 2079, 80: 1980, 99: 1999, 2024: 2024}
	for in, want := range tests {
		if got := ExpandYear(in); got != want {
			t.Errorf("ExpandYear(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestKeyString(t *testing.T) {
	k := Key{2026, 1, 14, PeriodAfternoon}
	if got := k.String(); got != "2026-01-14/1" {
		t.Errorf("String() = %q", got)
	}
}
