package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestEmbed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/embed" {
			t.Errorf("expected /embed, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		var req EmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		out := make([][]float32, len(req.Inputs))
		for i := range req.Inputs {
			out[i] = []float32{0.1, 0.2, 0.3}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	client := NewTEIClient(server.URL)
	embeddings, err := client.Embed(context.Background(), []string{"text1", "text2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embeddings) != 2 {
		t.Errorf("expected 2 embeddings, got %d", len(embeddings))
	}
	if len(embeddings[0]) != 3 || embeddings[0][0] != 0.1 {
		t.Errorf("unexpected embedding: %v", embeddings[0])
	}
}

func TestEmbed_BatchesLargeInputs(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		var req EmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Inputs) > embedBatchSize {
			t.Errorf("batch of %d exceeds limit %d", len(req.Inputs), embedBatchSize)
		}

		out := make([][]float32, len(req.Inputs))
		for i, text := range req.Inputs {
			// Encode the input index so ordering survives batching.
			var n float32
			fmt.Sscanf(text, "text-%f", &n)
			out[i] = []float32{n}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	inputs := make([]string, embedBatchSize*2+5)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("text-%d", i)
	}

	client := NewTEIClient(server.URL)
	embeddings, err := client.Embed(context.Background(), inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embeddings) != len(inputs) {
		t.Fatalf("expected %d embeddings, got %d", len(inputs), len(embeddings))
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("expected 3 batched requests, got %d", got)
	}
	for i, emb := range embeddings {
		if int(emb[0]) != i {
			t.Fatalf("embedding %d out of order: %v", i, emb)
		}
	}
}

func TestEmbed_EmptyInput(t *testing.T) {
	client := NewTEIClient("http://localhost:8080")
	embeddings, err := client.Embed(context.Background(), []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embeddings) != 0 {
		t.Errorf("expected 0 embeddings, got %d", len(embeddings))
	}
}

func TestEmbed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
	}))
	defer server.Close()

	client := NewTEIClient(server.URL)
	_, err := client.Embed(context.Background(), []string{"text1"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "TEI error (status 500)") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestEmbed_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([][]float32{{0.1}})
	}))
	defer server.Close()

	client := NewTEIClient(server.URL)
	_, err := client.Embed(context.Background(), []string{"text1", "text2"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "1 embeddings for 2 inputs") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestEmbed_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewTEIClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Embed(ctx, []string{"text1"}); err == nil {
		t.Fatal("expected error due to context cancellation, got nil")
	}
}
