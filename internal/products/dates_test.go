package products

import "testing"

func TestParseYear(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  *int
	}{
		{"1995", intPtr(1995)},
		{"2020-05-15T00:00:00Z", intPtr(2020)},
		{"1984-01-01", intPtr(1984)},
		{"", nil},
		{"unknown", nil},
		{"circa 1990", nil},
		{"99", nil},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got := parseYear(tc.input)
			switch {
			case tc.want == nil && got != nil:
				t.Errorf("parseYear(%q) = %d, want nil", tc.input, *got)
			case tc.want != nil && got == nil:
				t.Errorf("parseYear(%q) = nil, want %d", tc.input, *tc.want)
			case tc.want != nil && *got != *tc.want:
				t.Errorf("parseYear(%q) = %d, want %d", tc.input, *got, *tc.want)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
