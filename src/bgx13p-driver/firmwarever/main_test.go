package firmwarever

import "testing"

const target = "BGX13P.1.2.2738.2-1524-2738"

func TestParseWithLeadingGarbage(t *testing.T) {
	got, err := Parse("XXXXXX" + target + "\r\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got != target {
		t.Fatalf("got %q, want %q", got, target)
	}
}

func TestParseNoLeadingGarbage(t *testing.T) {
	got, err := Parse(target + "\r\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got != target {
		t.Fatalf("got %q, want %q", got, target)
	}
}

func TestParseTrailingGarbageIsIgnored(t *testing.T) {
	got, err := Parse("XXXXXX" + target + "\r\nXXXX")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got != target {
		t.Fatalf("got %q, want %q", got, target)
	}
}

func TestParseFindsFirstOccurrenceAcrossLines(t *testing.T) {
	got, err := Parse("XXXX\r\nXX" + target + "\r\nXXXX")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got != target {
		t.Fatalf("got %q, want %q", got, target)
	}
}

func TestParseFailsWithoutMarker(t *testing.T) {
	if _, err := Parse("BX13P.1.2.2738.2-1524-2738\r\n"); err == nil {
		t.Fatalf("expected an error when marker is absent")
	}
}

func TestParseFailsWithoutTerminator(t *testing.T) {
	if _, err := Parse("XXXXXX" + target); err == nil {
		t.Fatalf("expected an error when \\r\\n terminator is missing")
	}
}

func TestIsKnownGood(t *testing.T) {
	if !IsKnownGood(target) {
		t.Fatalf("expected %q to be classified as known-good", target)
	}
	if IsKnownGood("BGX13P.1.1.1000.1-1000-1000") {
		t.Fatalf("expected an older version to not be known-good")
	}
}
