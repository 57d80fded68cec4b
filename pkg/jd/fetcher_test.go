package jd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFetchFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posting.txt")
	if err := os.WriteFile(path, []byte("  Looking for a control engineer.\n"), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	content, err := Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if content != "Looking for a control engineer." {
		t.Errorf("Expected trimmed file content, got %q", content)
	}
}

func TestFetchEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	_, err := Fetch(context.Background(), path)
	if err == nil {
		t.Fatal("Expected an error for an empty file")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestFetchMissingFile(t *testing.T) {
	_, err := Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestFetchFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "persona-matrix/1.0" {
			t.Errorf("Unexpected User-Agent: %q", got)
		}
		w.Write([]byte(`<html><head>
<style>body { color: red; }</style>
<script>alert("x");</script>
</head><body>
<h1>Control Engineer</h1>
<p>PLC &amp; robotics experience required.</p>
</body></html>`))
	}))
	defer server.Close()

	content, err := Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if !strings.Contains(content, "Control Engineer") {
		t.Errorf("Expected body text, got %q", content)
	}
	if !strings.Contains(content, "PLC & robotics") {
		t.Errorf("Expected entities decoded, got %q", content)
	}
	if strings.Contains(content, "alert") || strings.Contains(content, "color: red") {
		t.Errorf("Expected script and style stripped, got %q", content)
	}
	if strings.Contains(content, "<") {
		t.Errorf("Expected tags stripped, got %q", content)
	}
}

func TestFetchURLNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.URL+"/gone")
	if err == nil {
		t.Fatal("Expected an error for a 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "plain text untouched",
			markup: "just text",
			want:   "just text",
		},
		{
			name:   "tags become separators",
			markup: "<p>one</p><p>two</p>",
			want:   "one two",
		},
		{
			name:   "nested script removed",
			markup: "before <script type=\"text/javascript\">var x = 1;</script> after",
			want:   "before after",
		},
		{
			name:   "whitespace collapsed",
			markup: "a\n\n   b\t\tc",
			want:   "a b c",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripHTML(tc.markup); got != tc.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tc.markup, got, tc.want)
			}
		})
	}
}
