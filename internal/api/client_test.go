// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestChatStreamFragments(t *testing.T) {
	var gotBody ChatStreamRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/stream" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("X-Session-Id", "sess-42")
		io.WriteString(w, "data: Hello\n\n")
		io.WriteString(w, "data: world\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	stream, err := client.ChatStream(context.Background(), NewChatStreamRequest("hi", "", nil))
	if err != nil {
		t.Fatalf("ChatStream() error: %v", err)
	}
	defer stream.Close()

	if stream.SessionID() != "sess-42" {
		t.Errorf("SessionID() = %q, want sess-42", stream.SessionID())
	}

	var fragments []string
	for {
		frag, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		fragments = append(fragments, frag)
	}
	if len(fragments) != 2 || fragments[0] != "Hello" || fragments[1] != "world" {
		t.Errorf("fragments = %v, want [Hello world]", fragments)
	}
	if !stream.SawDone() {
		t.Error("SawDone() = false after [DONE]")
	}
	if gotBody.Query != "hi" {
		t.Errorf("request query = %q", gotBody.Query)
	}
	if gotBody.SessionID != nil || gotBody.DocID != nil || gotBody.DocName != nil {
		t.Error("unbound fields should be null")
	}
}

func TestChatStreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ChatStream(context.Background(), NewChatStreamRequest("hi", "", nil))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", apiErr.Status)
	}
}

func TestNewChatStreamRequestExclusivity(t *testing.T) {
	tests := []struct {
		name     string
		doc      *ActiveDoc
		wantID   string
		wantName string
	}{
		{"nil doc", nil, "", ""},
		{"id only", &ActiveDoc{ID: "d1"}, "d1", ""},
		{"name only", &ActiveDoc{Name: "report.pdf"}, "", "report.pdf"},
		{"id wins over name", &ActiveDoc{ID: "d1", Name: "report.pdf"}, "d1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewChatStreamRequest("q", "", tt.doc)
			if tt.wantID == "" && req.DocID != nil {
				t.Errorf("DocID = %q, want nil", *req.DocID)
			}
			if tt.wantID != "" && (req.DocID == nil || *req.DocID != tt.wantID) {
				t.Errorf("DocID = %v, want %q", req.DocID, tt.wantID)
			}
			if tt.wantName == "" && req.DocName != nil {
				t.Errorf("DocName = %q, want nil", *req.DocName)
			}
			if tt.wantName != "" && (req.DocName == nil || *req.DocName != tt.wantName) {
				t.Errorf("DocName = %v, want %q", req.DocName, tt.wantName)
			}
			if req.DocID != nil && req.DocName != nil {
				t.Error("doc_id and pdf_name both set")
			}
		})
	}
}

func TestChatStreamSessionIDSent(t *testing.T) {
	var got ChatStreamRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, "data: ok\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	stream, err := client.ChatStream(context.Background(), NewChatStreamRequest("q", "sess-7", nil))
	if err != nil {
		t.Fatalf("ChatStream() error: %v", err)
	}
	stream.Close()

	if got.SessionID == nil || *got.SessionID != "sess-7" {
		t.Errorf("session_id = %v, want sess-7", got.SessionID)
	}
}

func TestUploadPDFProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "doc.pdf" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		json.NewEncoder(w).Encode(UploadResult{
			Message: "PDF processed successfully",
			DocID:   "doc-1",
			DocName: "doc.pdf",
		})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, make([]byte, 8192), 0o644); err != nil {
		t.Fatal(err)
	}

	var fractions []float64
	client := NewClient(server.URL)
	result, err := client.UploadPDF(context.Background(), path, func(fraction float64, indeterminate bool) {
		if indeterminate {
			t.Error("unexpected indeterminate progress with known size")
		}
		fractions = append(fractions, fraction)
	})
	if err != nil {
		t.Fatalf("UploadPDF() error: %v", err)
	}
	if result.DocID != "doc-1" || result.DocName != "doc.pdf" {
		t.Errorf("result = %+v", result)
	}
	if result.AlreadyProcessed() {
		t.Error("AlreadyProcessed() = true for fresh upload")
	}
	if len(fractions) == 0 {
		t.Fatal("no progress reported")
	}
	last := fractions[len(fractions)-1]
	if last != 100 {
		t.Errorf("final fraction = %v, want 100", last)
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Errorf("progress regressed: %v after %v", fractions[i], fractions[i-1])
		}
	}
}

func TestUploadPDFAlreadyProcessed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(UploadResult{
			Message: "PDF already embedded",
			DocID:   "doc-1",
			DocName: "doc.pdf",
		})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := NewClient(server.URL)
	result, err := client.UploadPDF(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("UploadPDF() error: %v", err)
	}
	if !result.AlreadyProcessed() {
		t.Error("AlreadyProcessed() = false for already-embedded response")
	}
}

func TestListDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"items":[{"id":"1","pdf_name":"a.pdf","display_name":"A","embedded":true,"category":"policy"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	docs, err := client.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "1" || docs[0].DocName != "a.pdf" || !docs[0].Embedded {
		t.Errorf("docs = %+v", docs)
	}
}

func TestThrottleRejectsBurst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "data: ok\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var throttled bool
	for i := 0; i < sendBurst+2; i++ {
		stream, err := client.ChatStream(context.Background(), NewChatStreamRequest("q", "", nil))
		if err != nil {
			if !errors.Is(err, ErrThrottled) {
				t.Fatalf("unexpected error: %v", err)
			}
			throttled = true
			break
		}
		stream.Close()
	}
	if !throttled {
		t.Error("burst never throttled")
	}
}
