package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsInternetAvailable_ProbeSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q, want test-agent", ua)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewReachability(srv.URL, "test-agent", time.Second)
	r.capability = func() bool { return true }

	if !r.IsInternetAvailable(context.Background()) {
		t.Fatal("IsInternetAvailable() = false, want true")
	}

	// A second check within the validation window must not probe again.
	if !r.IsInternetAvailable(context.Background()) {
		t.Fatal("cached IsInternetAvailable() = false, want true")
	}
	if hits.Load() != 1 {
		t.Errorf("probe hit count = %d, want 1", hits.Load())
	}
}

func TestIsInternetAvailable_NoCapability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("probe should not run without capability")
	}))
	defer srv.Close()

	r := NewReachability(srv.URL, "test-agent", time.Second)
	r.capability = func() bool { return false }

	if r.IsInternetAvailable(context.Background()) {
		t.Error("IsInternetAvailable() = true without capability")
	}
}

func TestIsInternetAvailable_ProbeFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewReachability(srv.URL, "test-agent", time.Second)
	r.capability = func() bool { return true }

	if r.IsInternetAvailable(context.Background()) {
		t.Error("IsInternetAvailable() = true with failing probe")
	}
}
