package util

import "testing"

func TestCleanFileName(t *testing.T) {
	tests := map[string]string{
		"lab.pdf":            "lab.pdf",
		" scan 1.png ":       "scan 1.png",
		"../../etc/passwd":   "passwd",
		`C:\Users\me\bp.txt`: "bp.txt",
		"re\x00port\n.pdf":   "report.pdf",
		"..":                 "",
		"dir/":               "",
		"notes..v2.txt":      "notes..v2.txt",
	}
	for in, want := range tests {
		if got := CleanFileName(in); got != want {
			t.Errorf("CleanFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizePathSegment(t *testing.T) {
	tests := map[string]string{
		"user-1":          "user-1",
		"a/b":             "a_b",
		"..":              "_",
		"":                "_",
		"jane@clinic.org": "jane@clinic.org",
		"x y\\z":          "x_y_z",
	}
	for in, want := range tests {
		if got := SanitizePathSegment(in); got != want {
			t.Errorf("SanitizePathSegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeExtension(t *testing.T) {
	tests := map[string]string{
		"scan.PDF":             ".pdf",
		"photo.jpeg":           ".jpeg",
		"noext":                "",
		"weird.p$f":            "",
		"dir.d/file":           "",
		"archive.tar.gz":       ".gz",
		"trailing.":            "",
		"x.averylongextension": "",
	}
	for in, want := range tests {
		if got := SafeExtension(in); got != want {
			t.Errorf("SafeExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileStem(t *testing.T) {
	tests := map[string]string{
		"lab.pdf":        "lab",
		"a/b/report.txt": "report",
		"noext":          "noext",
		".pdf":           "",
	}
	for in, want := range tests {
		if got := FileStem(in); got != want {
			t.Errorf("FileStem(%q) = %q, want %q", in, got, want)
		}
	}
}
