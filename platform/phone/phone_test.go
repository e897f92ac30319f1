package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"us national format", "(415) 555-2671", "+14155552671"},
		{"already e164", "+14155552671", "+14155552671"},
		{"invalid passthrough", "not-a-number", "not-a-number"},
		{"empty", "  ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input); got != tc.want {
				t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("+14155552671") {
		t.Fatal("expected valid number to be accepted")
	}
	if IsValid("12345") {
		t.Fatal("expected short number to be rejected")
	}
	if IsValid("") {
		t.Fatal("expected empty input to be rejected")
	}
}
