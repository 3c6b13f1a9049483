// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type item struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_BearerToken(t *testing.T) {
	var gotAuth []string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	})

	base := New(srv.URL)
	ctx := context.Background()

	var out List[item]
	if err := base.WithToken("abc").Get(ctx, "/blogs", nil, &out); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if err := base.Get(ctx, "/blogs", nil, &out); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if err := base.WithToken("").Get(ctx, "/blogs", nil, &out); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	want := []string{"Bearer abc", "", ""}
	for i, w := range want {
		if gotAuth[i] != w {
			t.Errorf("request %d Authorization = %q, want %q", i, gotAuth[i], w)
		}
	}
}

func TestClient_WithTokenDoesNotMutateParent(t *testing.T) {
	base := New("https://api.example.org")
	child := base.WithToken("secret")

	if base.Token() != "" {
		t.Errorf("parent Token() = %q, want empty", base.Token())
	}
	if child.Token() != "secret" {
		t.Errorf("child Token() = %q, want %q", child.Token(), "secret")
	}
}

func TestClient_BaseURLJoin(t *testing.T) {
	var gotPath, gotQuery string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{}`)
	})

	c := New(srv.URL + "/api/")
	q := url.Values{"status": {"pending"}}
	if err := c.Get(context.Background(), "volunteers", q, nil); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if gotPath != "/api/volunteers" {
		t.Errorf("path = %q, want /api/volunteers", gotPath)
	}
	if gotQuery != "status=pending" {
		t.Errorf("query = %q, want status=pending", gotQuery)
	}
}

func TestClient_DecodeList(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr Kind
	}{
		{name: "bare array", body: `[{"_id":"1","title":"a"},{"_id":"2","title":"b"}]`, want: 2},
		{name: "data envelope", body: `{"success":true,"data":[{"_id":"1","title":"a"}]}`, want: 1},
		{name: "empty array", body: `[]`, want: 0},
		{name: "null data", body: `{"data":null}`, wantErr: KindDecode},
		{name: "object without data", body: `{"items":[]}`, wantErr: KindDecode},
		{name: "string", body: `"nope"`, wantErr: KindDecode},
		{name: "wrong element type", body: `[1,2,3]`, wantErr: KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, tt.body)
			})

			var out List[item]
			err := New(srv.URL).Get(context.Background(), "/things", nil, &out)
			if tt.wantErr != "" {
				if !IsKind(err, tt.wantErr) {
					t.Fatalf("Get() error = %v, want kind %s", err, tt.wantErr)
				}
				var apiErr *Error
				if errors.As(err, &apiErr) && apiErr.Endpoint != "/things" {
					t.Errorf("Endpoint = %q, want /things", apiErr.Endpoint)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error: %v", err)
			}
			if len(out) != tt.want {
				t.Errorf("len = %d, want %d", len(out), tt.want)
			}
			if out == nil {
				t.Error("decoded list is nil, want empty slice")
			}
		})
	}
}

func TestClient_DecodeObjectEnvelope(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"_id":"42","title":"Clean water"}}`)
	})

	var out item
	if err := New(srv.URL).Get(context.Background(), "/programs/42", nil, &out); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if out.ID != "42" || out.Title != "Clean water" {
		t.Errorf("decoded %+v", out)
	}
}

func TestClient_StatusKinds(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		want    Kind
		message string
	}{
		{http.StatusBadRequest, `{"message":"Email is required"}`, KindValidation, "Email is required"},
		{http.StatusUnprocessableEntity, `{"errors":[{"msg":"Invalid phone"}]}`, KindValidation, "Invalid phone"},
		{http.StatusUnauthorized, `{"error":"Token expired"}`, KindUnauthorized, "Token expired"},
		{http.StatusForbidden, `{}`, KindForbidden, ""},
		{http.StatusNotFound, `not json`, KindNotFound, ""},
		{http.StatusInternalServerError, `{"message":"boom"}`, KindServer, "boom"},
		{http.StatusBadGateway, ``, KindServer, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := New(srv.URL).Post(context.Background(), "/contacts", map[string]string{"name": "x"}, nil)
			if err == nil {
				t.Fatal("Post() error = nil, want error")
			}
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %T is not *Error", err)
			}
			if apiErr.Kind != tt.want {
				t.Errorf("Kind = %s, want %s", apiErr.Kind, tt.want)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if got := MessageOf(err, "fallback"); tt.message != "" && got != tt.message {
				t.Errorf("MessageOf() = %q, want %q", got, tt.message)
			} else if tt.message == "" && got != "fallback" {
				t.Errorf("MessageOf() = %q, want fallback", got)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	err := New(addr).Get(context.Background(), "/blogs", nil, nil)
	if !IsKind(err, KindTransport) {
		t.Fatalf("Get() error = %v, want transport kind", err)
	}
	if got := MessageOf(err, "Network error"); got != "Network error" {
		t.Errorf("MessageOf() = %q, want fallback", got)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := New(srv.URL).Get(ctx, "/slow", nil, nil)
	if !IsKind(err, KindTransport) {
		t.Fatalf("Get() error = %v, want transport kind", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error should wrap context.DeadlineExceeded, got %v", err)
	}
}

func TestClient_JSONBody(t *testing.T) {
	var gotBody map[string]any
	var gotMethod, gotType string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"_id":"9","title":"saved"}`)
	})

	c := New(srv.URL)
	var out item
	if err := c.Patch(context.Background(), "/volunteers/9/status", map[string]string{"status": "approved"}, &out); err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Errorf("method = %s, want PATCH", gotMethod)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotType)
	}
	if gotBody["status"] != "approved" {
		t.Errorf("body status = %v, want approved", gotBody["status"])
	}
	if out.Title != "saved" {
		t.Errorf("out.Title = %q, want saved", out.Title)
	}
}

func TestClient_Delete(t *testing.T) {
	var gotMethod string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	if err := New(srv.URL).Delete(context.Background(), "/blogs/1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", gotMethod)
	}
}

func TestClient_PostMultipart(t *testing.T) {
	var gotTitle, gotFilename, gotContent string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		gotTitle = r.FormValue("title")
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer func() { _ = f.Close() }()
		data, _ := io.ReadAll(f)
		gotFilename = hdr.Filename
		gotContent = string(data)
		_, _ = io.WriteString(w, `{"_id":"g1"}`)
	})

	file := &FilePart{Field: "image", Filename: "photo.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")}
	var out item
	err := New(srv.URL).PostMultipart(context.Background(), "/gallery", map[string]string{"title": "Camp"}, file, &out)
	if err != nil {
		t.Fatalf("PostMultipart() error: %v", err)
	}
	if gotTitle != "Camp" || gotFilename != "photo.jpg" || gotContent != "jpegdata" {
		t.Errorf("got title=%q filename=%q content=%q", gotTitle, gotFilename, gotContent)
	}
	if out.ID != "g1" {
		t.Errorf("out.ID = %q, want g1", out.ID)
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindValidation, Status: 400, Method: "POST", Endpoint: "/contacts", Message: "Name is required"}
	got := err.Error()
	for _, part := range []string{"POST", "/contacts", "validation", "400", "Name is required"} {
		if !strings.Contains(got, part) {
			t.Errorf("Error() = %q, missing %q", got, part)
		}
	}
}

func TestKindOf_NonAPIError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf() = %s, want unknown", got)
	}
	if IsKind(nil, KindUnknown) {
		t.Error("IsKind(nil) = true, want false")
	}
}
