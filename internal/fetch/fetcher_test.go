package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleJSON = `{
  "coach_name": "Tite",
  "sidebar_date": "Quinta\n14.1.26 TAR",
  "news": [
    {"date": "14.1.26 TAR", "category": "Mensagens", "title": "Bem-vindo", "description": "Olá"}
  ]
}`

func TestFetchJSON(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleJSON))
	}))
	defer server.Close()

	f := NewFetcher(2*time.Second, "", FormatJSON)
	raw, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", raw)
	}
	if doc["coach_name"] != "Tite" {
		t.Errorf("coach_name = %v", doc["coach_name"])
	}
	if items, _ := doc["news"].([]any); len(items) != 1 {
		t.Errorf("expected 1 news item, got %v", doc["news"])
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, DefaultUserAgent)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    Kind
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			kind: KindNetwork,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"news": [`))
			},
			kind: KindParse,
		},
		{
			name: "html error page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>oops</html>`))
			},
			kind: KindParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewFetcher(time.Second, "", FormatJSON).Fetch(context.Background(), server.URL)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsKind(err, tt.kind) {
				t.Errorf("expected kind %s, got %v (%s)", tt.kind, err, KindOf(err))
			}
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewFetcher(time.Second, "", FormatJSON).Fetch(context.Background(), url)
	if !IsKind(err, KindNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := NewFetcher(50*time.Millisecond, "", FormatJSON).Fetch(context.Background(), server.URL)
	if !IsKind(err, KindNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout not honored: took %v", time.Since(start))
	}
}

func TestFetchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(time.Second, "", FormatJSON).Fetch(ctx, "http://127.0.0.1:1/")
	if !IsKind(err, KindNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestFetchLatin1Body(t *testing.T) {
	body := []byte(`{"news":[{"title":"Competi` + "\xe7\xf5" + `es","category":"Competi` + "\xe7\xf5" + `es"}]}`)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	raw, err := NewFetcher(time.Second, "", FormatJSON).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	item := raw.(map[string]any)["news"].([]any)[0].(map[string]any)
	if item["title"] != "Competições" {
		t.Errorf("title = %q, want Competições", item["title"])
	}
}

func TestFetchFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := NewFetcher(time.Second, "", FormatJSON).Fetch(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if raw.(map[string]any)["coach_name"] != "Tite" {
		t.Errorf("unexpected document %v", raw)
	}

	_, err = NewFetcher(time.Second, "", FormatJSON).Fetch(context.Background(), "file://"+path+".missing")
	if !IsKind(err, KindNetwork) {
		t.Errorf("missing file should be a network error, got %v", err)
	}
}

func TestFetchUnsupportedScheme(t *testing.T) {
	_, err := NewFetcher(time.Second, "", FormatJSON).Fetch(context.Background(), "ftp://example.com/news.json")
	if !IsKind(err, KindNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestFetchRSS(t *testing.T) {
	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Clube</title>
    <item>
      <title>Reforço chega</title>
      <description>Novo atacante</description>
      <category>Transferências</category>
      <pubDate>Mon, 01 Jan 2024 15:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Sem data</title>
      <description>Nada</description>
    </item>
  </channel>
</rss>`

	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rss))
	}))
	defer server.Close()

	f := NewFetcher(time.Second, "test-agent", FormatRSS)
	raw, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotAccept == "" || gotAccept == "application/json" {
		t.Errorf("unexpected Accept header %q", gotAccept)
	}

	items := raw.(map[string]any)["news"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0].(map[string]any)
	if first["title"] != "Reforço chega" {
		t.Errorf("title = %v", first["title"])
	}
	if first["date"] != "1.1.24 TAR" {
		t.Errorf("date = %v, want 1.1.24 TAR", first["date"])
	}
	if first["category"] != "Transferências" {
		t.Errorf("category = %v", first["category"])
	}

	second := items[1].(map[string]any)
	if _, ok := second["date"]; ok {
		t.Errorf("undated item should have no date, got %v", second["date"])
	}
}

func TestItemDate(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{9, "5.3.26 MAN"},
		{12, "5.3.26 TAR"},
		{17, "5.3.26 TAR"},
		{18, "5.3.26 NTE"},
		{23, "5.3.26 NTE"},
	}
	for _, tt := range tests {
		ts := time.Date(2026, 3, 5, tt.hour, 0, 0, 0, time.UTC)
		if got := ItemDate(ts); got != tt.want {
			t.Errorf("ItemDate(%v) = %q, want %q", ts, got, tt.want)
		}
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		url  string
		path string
		ok   bool
	}{
		{"file:///tmp/news.json", "/tmp/news.json", true},
		{"file://localhost/tmp/news.json", "/tmp/news.json", true},
		{"FILE:///x.json", "/x.json", true},
		{"https://example.com/news.json", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		path, ok := LocalPath(tt.url)
		if path != tt.path || ok != tt.ok {
			t.Errorf("LocalPath(%q) = (%q, %v), want (%q, %v)", tt.url, path, ok, tt.path, tt.ok)
		}
	}
}
