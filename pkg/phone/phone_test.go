package phone

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5551234567", "(555) 123-4567"},
		{"555", "555"},
		{"55512", "(555) 12"},
		{"555-123-4567x99", "(555) 123-4567"},
		{"", ""},
		{"abc", ""},
		{"5551", "(555) 1"},
		{"555123", "(555) 123"},
		{"5551234", "(555) 123-4"},
		{"+1 (555) 123-4567", "(155) 512-3456"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{"5551234567", "(555) 123-4567", "555", "55512", "5551234", "555-123-4567x99", "1"}
	for _, in := range inputs {
		once := Format(in)
		if twice := Format(once); twice != once {
			t.Errorf("Format(Format(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("(555) 123-4567"); got != "5551234567" {
		t.Errorf("Digits() = %q", got)
	}
	if got := Digits("٣٤٥"); got != "" {
		t.Errorf("non-ASCII digits should be dropped, got %q", got)
	}
}
