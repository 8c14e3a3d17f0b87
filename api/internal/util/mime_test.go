package util

import "testing"

func TestExtAllowed(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"doc.pdf", true},
		{"photo.PNG", true},
		{"scan.Jpeg", true},
		{"pic.tiff", true},
		{"pic.bmp", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noext", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := ExtAllowed(tc.name); got != tc.want {
			t.Errorf("ExtAllowed(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMimeByExt(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.pdf", "application/pdf"},
		{"a.jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"a.png", "image/png"},
		{"a.tiff", "image/tiff"},
		{"a.bmp", "image/bmp"},
		{"a.bin", "application/octet-stream"},
	}
	for _, tc := range tests {
		if got := MimeByExt(tc.name); got != tc.want {
			t.Errorf("MimeByExt(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"scan.png", "scan.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\doc.pdf`, "doc.pdf"},
		{"my report (final).pdf", "my_report__final_.pdf"},
		{"...", "file"},
		{"", "file"},
		{"résumé.pdf", "r_sum_.pdf"},
	}
	for _, tc := range tests {
		if got := SecureFilename(tc.in); got != tc.want {
			t.Errorf("SecureFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSniffMimeHTTP(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"pdf", []byte("%PDF-1.7"), "application/pdf"},
	}
	for _, tc := range tests {
		if got := SniffMimeHTTP(tc.b); got != tc.want {
			t.Errorf("%s: SniffMimeHTTP = %q, want %q", tc.name, got, tc.want)
		}
	}
}
