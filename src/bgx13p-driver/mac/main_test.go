package mac

import "testing"

func TestParseColonSeparated(t *testing.T) {
	m, err := Parse("d0:cf:5e:82:85:06")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got, want := m.String(), "d0cf5e828506"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParseUppercaseBare(t *testing.T) {
	m, err := Parse("D0CF5E828506")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got, want := m.String(), "d0cf5e828506"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParseRejectsWrongLength(t *testing.T) {
	for _, s := range []string{"d0:cf:5e:82:85", "d0cf5e8285", "d0cf5e82850600"} {
		if _, err := Parse(s); err == nil {
			t.Fatalf("Parse(%q) should have failed", s)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	want := MAC{0xd0, 0xcf, 0x5e, 0x82, 0x85, 0x06}
	m, err := Parse(want.String())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if m != want {
		t.Fatalf("round trip: got %v, want %v", m, want)
	}
}
