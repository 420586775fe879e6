package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sightscan/internal/config"
	"github.com/nao1215/sightscan/internal/database"
	"github.com/nao1215/sightscan/internal/model"
	"github.com/nao1215/sightscan/internal/report"
)

// writeConfig writes a config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".sightscan")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"list", "l", ""},
		{"output", "o", "[]"},
		{"config", "c", ""},
		{"renderer", "r", "chrome"},
		{"timeout", "t", "10s"},
		{"ready-timeout", "", "3s"},
		{"settle-delay", "", "1s"},
		{"depth", "d", "1"},
		{"max-pages", "p", "0"},
		{"normalization", "", "literal"},
		{"history", "", "false"},
		{"headful", "", "false"},
	}

	for _, tt := range flags {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestBuildConfig tests merging of arguments, list file, config file and flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("seeds are concatenated in order", func(t *testing.T) {
		t.Parallel()

		listPath := filepath.Join(t.TempDir(), "sites.txt")
		if err := os.WriteFile(listPath, []byte("# list\nlist.com\n"), 0600); err != nil {
			t.Fatalf("failed to write list: %v", err)
		}
		configPath := writeConfig(t, "seeds:\n  - file.com\n")

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"-c", configPath, "-l", listPath}); err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"arg.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := []string{"arg.com", "list.com", "file.com"}; !slices.Equal(cfg.Seeds, want) {
			t.Errorf("seeds = %v, want %v", cfg.Seeds, want)
		}
	})

	t.Run("flags override the config file", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfig(t, `renderer: http
page_load_timeout: 30s
max_pages: 5
outputs:
  - file.csv
`)

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"-c", configPath, "-p", "9", "-o", "a.csv", "-o", "b.xlsx", "--headful"}); err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Renderer != config.RendererHTTP {
			t.Errorf("renderer from file lost: %q", cfg.Renderer)
		}
		if cfg.PageLoadTimeout != 30*time.Second {
			t.Errorf("timeout from file lost: %v", cfg.PageLoadTimeout)
		}
		if cfg.MaxPages != 9 {
			t.Errorf("expected flag max pages 9, got %d", cfg.MaxPages)
		}
		if !slices.Equal(cfg.Outputs, []string{"a.csv", "b.xlsx"}) {
			t.Errorf("outputs = %v", cfg.Outputs)
		}
		if cfg.Headless {
			t.Error("expected --headful to disable headless mode")
		}
	})

	t.Run("unset flags keep defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"-c", writeConfig(t, "{}\n")}); err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"a.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(cfg.Outputs, []string{config.DefaultOutput}) {
			t.Errorf("outputs = %v", cfg.Outputs)
		}
		if cfg.Renderer != config.RendererChrome || !cfg.Headless {
			t.Errorf("renderer = %q headless=%v", cfg.Renderer, cfg.Headless)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}

		_, err := buildConfig(cmd, []string{"a.com"})
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("missing list file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"-c", writeConfig(t, "{}\n"), "-l", filepath.Join(t.TempDir(), "missing.txt")}); err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}

		if _, err := buildConfig(cmd, nil); err == nil {
			t.Error("expected error for missing list file")
		}
	})
}

// TestScanValidation tests that invalid configurations fail before crawling.
func TestScanValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no seeds", nil, config.ErrNoSeeds},
		{"bad renderer", []string{"-r", "lynx", "a.com"}, config.ErrInvalidRenderer},
		{"bad normalization", []string{"--normalization", "fuzzy", "a.com"}, config.ErrInvalidNormalization},
		{"zero timeout", []string{"-t", "0s", "a.com"}, config.ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(append([]string{"scan", "-c", writeConfig(t, "{}\n")}, tt.args...))

			if err := root.Execute(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("unknown output format", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs([]string{"scan", "-c", writeConfig(t, "{}\n"), "-r", "http",
			"-o", filepath.Join(t.TempDir(), "results.txt"), "a.com"})

		if err := root.Execute(); !errors.Is(err, report.ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})
}

// newTestSite serves a small site whose /about page embeds the widget.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body>
<a href="/news">News</a>
<a href="/team/alice">Alice</a>
<a href="https://elsewhere.example/about">Elsewhere</a>
<a href="/about">About</a>
</body></html>`)
	})
	mux.HandleFunc("/news", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/">Home</a></body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><iframe src="https://sightmap.com/embed/abc123?enable=api"></iframe></body></html>`)
	})
	mux.HandleFunc("/team/alice", func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("deep page must not be fetched")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// closedServerURL returns the URL of a server that is no longer listening.
func closedServerURL(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

// TestScanEndToEnd crawls real HTTP servers with the http renderer.
func TestScanEndToEnd(t *testing.T) {
	t.Parallel()

	site := newTestSite(t)
	down := closedServerURL(t)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "results.csv")
	jsonPath := filepath.Join(dir, "results.json")
	dbDir := filepath.Join(dir, "db")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"scan",
		"-c", writeConfig(t, "{}\n"),
		"-r", "http",
		"--no-progress",
		"-o", csvPath,
		"-o", jsonPath,
		"--history", "--db-dir", dbDir,
		down, site.URL,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(csvPath) //nolint:gosec // test file in TempDir
	if err != nil {
		t.Fatalf("failed to open results: %v", err)
	}
	defer f.Close()

	records, err := report.ReadCSV(f)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	t.Run("unreachable site is recorded first", func(t *testing.T) {
		if records[0].Site != down || !records[0].Outcome.IsError() {
			t.Errorf("first record = %+v", records[0])
		}
		if !strings.HasPrefix(records[0].Outcome.Message, "Error loading "+down) {
			t.Errorf("message = %q", records[0].Outcome.Message)
		}
	})

	t.Run("embed found on top-level page", func(t *testing.T) {
		r := records[1]
		if r.Site != site.URL || !r.Outcome.IsFound() {
			t.Fatalf("second record = %+v", r)
		}
		if r.Outcome.Match.EmbedURL != "https://sightmap.com/embed/abc123?enable=api" {
			t.Errorf("embed = %q", r.Outcome.Match.EmbedURL)
		}
		if !r.Outcome.Match.APIUsage {
			t.Error("expected API usage")
		}
		if r.Outcome.Match.DiscoveredAt != site.URL+"/about" {
			t.Errorf("closest url = %q", r.Outcome.Match.DiscoveredAt)
		}
	})

	t.Run("json output written", func(t *testing.T) {
		data, err := os.ReadFile(jsonPath) //nolint:gosec // test file in TempDir
		if err != nil {
			t.Fatalf("failed to read json: %v", err)
		}
		if !strings.Contains(string(data), `"total": 2`) && !strings.Contains(string(data), `"total":2`) {
			t.Errorf("unexpected json: %s", data)
		}
	})

	t.Run("history saved", func(t *testing.T) {
		db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		defer db.Close()

		latest, err := db.Latest(t.Context(), site.URL)
		if err != nil {
			t.Fatalf("Latest: %v", err)
		}
		if latest == nil || latest.Outcome.Kind != model.OutcomeFound {
			t.Errorf("latest = %+v", latest)
		}
	})

	t.Run("summary printed", func(t *testing.T) {
		if !strings.Contains(out.String(), "Results written to "+csvPath) {
			t.Errorf("unexpected output: %s", out.String())
		}
	})
}
