package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "resume.pdf", want: "resume.pdf"},
		{in: "My Resume (final).docx", want: "My_Resume__final_.docx"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\jane\cv.pdf`, want: "cv.pdf"},
		{in: "résumé.pdf", want: "r_sum_.pdf"},
		{in: "   ", wantErr: true},
		{in: "..", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SanitizeFileName(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
