package httplib

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

func call(t *testing.T, d value.Dispatcher, method string, args []value.Value, kwargs map[string]value.Value) value.Value {
	t.Helper()
	v, err := d.Dispatch(method, args, kwargs)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return v
}

func TestGetReturnsStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	h := New()
	v := call(t, h, "get", []value.Value{value.String(srv.URL)}, nil)
	code, ok, err := v.Dict().Get(value.String("status_code"))
	if err != nil || !ok || code.AsInt() != http.StatusTeapot {
		t.Fatalf("got code=%v ok=%v err=%v, want 418", code, ok, err)
	}
	body, ok, err := v.Dict().Get(value.String("body"))
	if err != nil || !ok || body.AsString() != "hello" {
		t.Fatalf("got body=%v ok=%v err=%v, want hello", body, ok, err)
	}
}

func TestGetAppliesQueryParamsAndHeaders(t *testing.T) {
	var gotQuery, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotHeader = r.Header.Get("X-Test")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := New()
	call(t, h, "get", []value.Value{value.String(srv.URL)}, map[string]value.Value{
		"query_params": library.ToStringDict(map[string]string{"q": "42"}),
		"headers":      library.ToStringDict(map[string]string{"X-Test": "yes"}),
	})
	if gotQuery != "42" {
		t.Fatalf("got query %q, want 42", gotQuery)
	}
	if gotHeader != "yes" {
		t.Fatalf("got header %q, want yes", gotHeader)
	}
}

func TestPostSendsFormBody(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := New()
	call(t, h, "post", []value.Value{value.String(srv.URL)}, map[string]value.Value{
		"form": library.ToStringDict(map[string]string{"a": "1"}),
	})
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("got content-type %q", gotContentType)
	}
	if gotBody != "a=1" {
		t.Fatalf("got body %q, want a=1", gotBody)
	}
}

func TestPostSendsRawBody(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := New()
	call(t, h, "post", []value.Value{value.String(srv.URL)}, map[string]value.Value{
		"body": value.String("raw-payload"),
	})
	if gotBody != "raw-payload" {
		t.Fatalf("got body %q, want raw-payload", gotBody)
	}
}

func TestDownloadWritesResponseToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("file-contents"))
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "out.bin")
	h := New()
	call(t, h, "download", []value.Value{value.String(srv.URL), value.String(dst)}, nil)

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != "file-contents" {
		t.Fatalf("got %q, want file-contents", got)
	}
}
