package mlclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecommend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recommend" || r.Method != http.MethodPost {
			t.Errorf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Preferences map[string]any `json:"preferences"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Preferences["genre"] != "Action" {
			t.Errorf("preferences = %v", body.Preferences)
		}
		w.Write([]byte(`{"movies":["tt1"]}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	payload, err := client.Recommend(context.Background(), map[string]any{"genre": "Action"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if string(payload) != `{"movies":["tt1"]}` {
		t.Fatalf("payload = %s", payload)
	}
}

func TestRecommendServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not trained"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Recommend(context.Background(), map[string]any{"genre": "Action"})
	if err == nil || !strings.Contains(err.Error(), "model not trained") {
		t.Fatalf("err = %v, want service error message", err)
	}
}

func TestTrain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/train" || r.Method != http.MethodPost {
			t.Errorf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"status":"training"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	payload, err := client.Train(context.Background())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if string(payload) != `{"status":"training"}` {
		t.Fatalf("payload = %s", payload)
	}
}
