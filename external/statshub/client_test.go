package statshub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSearchPlayers_MapsHitsAndCapturesPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/search" {
			t.Errorf("unexpected path: got=%s", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "Luka Horvat" {
			t.Errorf("unexpected name param: got=%s", got)
		}
		if got := r.URL.Query().Get("api_token"); got != "secret-token" {
			t.Errorf("unexpected api_token param: got=%s", got)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"id":4401,"name":"Luka Horvat","team_name":"Dinamo","position":"Striker"},
			{"id":0,"name":"ignored"},
			{"id":4402,"name":"Luka Horvath","team_name":"Hajduk","position":"Winger"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "secret-token"})

	hits, payloads, err := client.SearchPlayers(context.Background(), "Luka Horvat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected two hits, got=%d", len(hits))
	}
	if hits[0].SourceID != "4401" {
		t.Fatalf("expected source id 4401, got=%s", hits[0].SourceID)
	}
	if string(hits[0].Position) != "ST" {
		t.Fatalf("expected position ST, got=%s", hits[0].Position)
	}
	if string(hits[1].Position) != "W" {
		t.Fatalf("expected position W, got=%s", hits[1].Position)
	}

	if len(payloads) != 1 {
		t.Fatalf("expected one payload, got=%d", len(payloads))
	}
	payload := payloads[0]
	if payload.Source != "statshub" {
		t.Fatalf("unexpected payload source: got=%s", payload.Source)
	}
	if payload.EntityType != "api_response" {
		t.Fatalf("unexpected payload entity type: got=%s", payload.EntityType)
	}
	if !strings.HasPrefix(payload.EntityKey, "/players/search?") {
		t.Fatalf("unexpected payload entity key: got=%s", payload.EntityKey)
	}
	if payload.PayloadHash == "" {
		t.Fatalf("expected payload hash to be set")
	}
	if payload.FetchedAt.IsZero() {
		t.Fatalf("expected payload fetched_at to be set")
	}
}

func TestFetchProfile_MapsNormalizedFields(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/4401" {
			t.Errorf("unexpected path: got=%s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{
			"id":4401,
			"name":"Luka Horvat",
			"date_of_birth":"1999-03-14",
			"nationality":"Croatia",
			"height_cm":184,
			"weight_kg":78,
			"preferred_foot":"Left",
			"position":"Attacking Midfielder"
		}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "secret-token"})

	got, payloads, err := client.FetchProfile(context.Background(), "4401")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Fields.Name != "Luka Horvat" {
		t.Fatalf("unexpected name: got=%s", got.Fields.Name)
	}
	if got.Fields.BirthDate == nil || got.Fields.BirthDate.Format("2006-01-02") != "1999-03-14" {
		t.Fatalf("unexpected birth date: got=%v", got.Fields.BirthDate)
	}
	if got.Fields.HeightCm != 184 {
		t.Fatalf("unexpected height: got=%d", got.Fields.HeightCm)
	}
	if string(got.Fields.PreferredFoot) != "left" {
		t.Fatalf("unexpected foot: got=%s", got.Fields.PreferredFoot)
	}
	if string(got.Fields.Position) != "AM" {
		t.Fatalf("unexpected position: got=%s", got.Fields.Position)
	}
	if len(got.Raw) == 0 {
		t.Fatalf("expected raw payload to be kept")
	}
	if len(payloads) != 1 || payloads[0].PlayerPublicID != "4401" {
		t.Fatalf("expected one payload keyed to player 4401, got=%+v", payloads)
	}
}

func TestExecuteRequest_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "secret-token", MaxRetries: 2, Timeout: 5 * time.Second})

	_, _, err := client.SearchPlayers(context.Background(), "anyone")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected two requests, got=%d", got)
	}
}

func TestExecuteRequest_DoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"unknown player"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "secret-token", MaxRetries: 3})

	_, _, err := client.FetchProfile(context.Background(), "9999")
	if err == nil {
		t.Fatalf("expected error for status 404")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single request, got=%d", got)
	}
}

func TestSanitizeSensitiveText_RedactsToken(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`dial failed for https://api.statshub.io/v2/players/search?api_token=secret-token&name=x`, "secret-token")
	if strings.Contains(got, "secret-token") {
		t.Fatalf("expected token to be redacted, got=%s", got)
	}
	if !strings.Contains(got, "api_token=REDACTED") {
		t.Fatalf("expected redaction marker, got=%s", got)
	}
}

func TestParsePosition_UnknownFallsThroughEmpty(t *testing.T) {
	t.Parallel()

	if got := parsePosition("libero"); got != "" {
		t.Fatalf("expected empty position, got=%s", got)
	}
	if got := parsePosition(" Striker "); string(got) != "ST" {
		t.Fatalf("expected ST, got=%s", got)
	}
}
