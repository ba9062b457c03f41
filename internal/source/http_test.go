package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artbyte/assetcache/internal/apperrors"
)

func TestHTTPLoader_Fetch(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("asset-bytes"))
	}))
	defer srv.Close()

	l := NewHTTPLoader(srv.URL+"/assets", "assetcache-test/1.0", 5*time.Second, nil)
	data, err := l.Fetch(context.Background(), "icons/home.png")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "asset-bytes" {
		t.Fatalf("Expected body, got %q", data)
	}
	if gotPath != "/assets/icons/home.png" {
		t.Fatalf("Expected joined path, got %q", gotPath)
	}
	if gotUA != "assetcache-test/1.0" {
		t.Fatalf("Expected configured User-Agent, got %q", gotUA)
	}
}

func TestHTTPLoader_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := NewHTTPLoader(srv.URL, "", 5*time.Second, nil)
	_, err := l.Fetch(context.Background(), "missing.png")
	if !errors.Is(err, &apperrors.ErrSourceNotFound{}) {
		t.Fatalf("Expected ErrSourceNotFound, got %v", err)
	}
}

func TestHTTPLoader_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := NewHTTPLoader(srv.URL, "", 5*time.Second, nil)
	_, err := l.Fetch(context.Background(), "boom.png")
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
	if errors.Is(err, &apperrors.ErrSourceNotFound{}) {
		t.Fatal("A server error is not a missing asset")
	}
}

func TestHTTPLoader_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	l := NewHTTPLoader(srv.URL, "", time.Minute, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := l.Fetch(ctx, "slow.png")
	if err == nil {
		t.Fatal("Expected error when context deadline passes")
	}
}
