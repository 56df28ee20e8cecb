package langdetect

import (
	"slices"
	"testing"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	d := New(0)

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "english",
			text:   "The quick brown fox jumps over the lazy dog near the river bank.",
			want:   "en",
			wantOK: true,
		},
		{
			name:   "italian",
			text:   "Il Colosseo è il più grande anfiteatro romano del mondo ed è a Roma.",
			want:   "it",
			wantOK: true,
		},
		{
			name:   "german",
			text:   "Der Hauptbahnhof liegt mitten in der Stadt und ist immer sehr voll.",
			want:   "de",
			wantOK: true,
		},
		{
			name:   "too short",
			text:   "Rome",
			wantOK: false,
		},
		{
			name:   "blank",
			text:   "      ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := d.Detect(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Detect() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodes(t *testing.T) {
	t.Parallel()

	codes := Codes()
	slices.Sort(codes)
	want := []string{"de", "en", "es", "fr", "it", "pt", "ru"}
	if !slices.Equal(codes, want) {
		t.Errorf("Codes() = %v, want %v", codes, want)
	}
}
