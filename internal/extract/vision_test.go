package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	vision "google.golang.org/api/vision/v1"
)

func newTestVision(t *testing.T, handler http.HandlerFunc) *Vision {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	v, err := NewVision(context.Background(), VisionConfig{
		Endpoint:   srv.URL + "/",
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewVision: %v", err)
	}
	return v
}

func TestVisionAnnotatesImages(t *testing.T) {
	var got vision.BatchAnnotateImagesRequest
	v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "images:annotate") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{"fullTextAnnotation":{"text":"Hemoglobin 13.5 g/dL"}}]}`))
	})

	text, err := v.Extract(context.Background(), []byte("img-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Hemoglobin 13.5 g/dL" {
		t.Fatalf("unexpected text %q", text)
	}
	if len(got.Requests) != 1 {
		t.Fatalf("expected one request, got %d", len(got.Requests))
	}
	req := got.Requests[0]
	if req.Image.Content != base64.StdEncoding.EncodeToString([]byte("img-bytes")) {
		t.Fatalf("unexpected image content %q", req.Image.Content)
	}
	if req.Features[0].Type != "DOCUMENT_TEXT_DETECTION" {
		t.Fatalf("unexpected feature %q", req.Features[0].Type)
	}
}

func TestVisionAnnotatesPDFPages(t *testing.T) {
	v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "files:annotate") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req vision.BatchAnnotateFilesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Requests[0].InputConfig.MimeType != "application/pdf" {
			t.Errorf("unexpected mime %q", req.Requests[0].InputConfig.MimeType)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{"responses":[
			{"fullTextAnnotation":{"text":"page one"}},
			{},
			{"fullTextAnnotation":{"text":"page three"}}
		]}]}`))
	})

	text, err := v.Extract(context.Background(), []byte("%PDF"), "application/pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "page one\npage three" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestVisionReportsFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		want    string
	}{
		{name: "annotation error", status: http.StatusOK, body: `{"responses":[{"error":{"code":3,"message":"bad image"}}]}`, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"code":500,"message":"boom"}}`, wantErr: true},
		{name: "no text", status: http.StatusOK, body: `{"responses":[{}]}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			text, err := v.Extract(context.Background(), []byte("x"), "image/png")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, text)
			}
		})
	}
}

func TestVisionRejectsOtherTypes(t *testing.T) {
	v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := v.Extract(context.Background(), []byte("x"), "application/msword"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
