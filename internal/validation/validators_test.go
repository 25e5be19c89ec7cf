package validation

import (
	"reflect"
	"testing"
)

func TestValidateDateKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid date", value: "2025-06-15", wantErr: false},
		{name: "leap day", value: "2024-02-29", wantErr: false},
		{name: "empty", value: "", wantErr: true},
		{name: "wrong separator", value: "2025/06/15", wantErr: true},
		{name: "missing zero padding", value: "2025-6-15", wantErr: true},
		{name: "impossible day", value: "2025-02-30", wantErr: true},
		{name: "timestamp not a day key", value: "2025-06-15T10:00:00Z", wantErr: true},
		{name: "garbage", value: "not-a-date", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateDateKey(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDateKey(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    string
		to      string
		want    []string
		wantErr bool
	}{
		{
			name: "single day",
			from: "2025-06-15", to: "2025-06-15",
			want: []string{"2025-06-15"},
		},
		{
			name: "three days across month boundary",
			from: "2025-06-29", to: "2025-07-01",
			want: []string{"2025-06-29", "2025-06-30", "2025-07-01"},
		},
		{
			name: "reversed range",
			from: "2025-06-16", to: "2025-06-15",
			wantErr: true,
		},
		{
			name: "bad from",
			from: "nope", to: "2025-06-15",
			wantErr: true,
		},
		{
			name: "bad to",
			from: "2025-06-15", to: "nope",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DateRange(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DateRange(%q, %q) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DateRange(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trims whitespace", input: "  morning run  ", want: "morning run"},
		{name: "strips control chars", input: "read\x00 book\x07", want: "read book"},
		{name: "keeps newline and tab", input: "a\n\tb", want: "a\n\tb"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
