package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/con169/smart-textbook/internal/document"
	"github.com/con169/smart-textbook/internal/llm"
)

func TestAsk_MissingQuestion(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.doJSON(t, http.MethodPost, "/api/qa/ask", map[string]any{"page": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
}

func TestAsk_NoDocumentLoaded(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.doJSON(t, http.MethodPost, "/api/qa/ask", map[string]any{"question": "hello", "page": 1})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
}

func TestAsk_InvalidPage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.installDoc("one", "two", "three")

	rec := env.doJSON(t, http.MethodPost, "/api/qa/ask", map[string]any{"question": "hello", "page": 99})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "invalid page number 99: valid range is 1 to 3" {
		t.Errorf("error must name the valid range, got %q", resp["error"])
	}
}

func TestAsk_NegativePageRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	env.installDoc("one", "two", "three")

	rec := env.doJSON(t, http.MethodPost, "/api/qa/ask", map[string]any{"question": "hello", "page": -5})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "invalid page number -5: valid range is 1 to 3" {
		t.Errorf("error must name the valid range, got %q", resp["error"])
	}
}

func TestAsk_PageModeAnswer(t *testing.T) {
	env := newTestEnv(t, nil) // stub backend answers "stub answer"
	env.installDoc("page one text", "page two text", "page three text")

	rec := env.doJSON(t, http.MethodPost, "/api/qa/ask", map[string]any{"question": "what is here", "page": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Answer      string `json:"answer"`
		ContextUsed bool   `json:"context_used"`
		Context     string `json:"context"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "stub answer" {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
	if !resp.ContextUsed {
		t.Error("expected context_used true")
	}
	if resp.Context != "pages 1 to 3" {
		t.Errorf("unexpected context %q", resp.Context)
	}
}

func TestAsk_RateLimitMapsTo429(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "10")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	env.installDoc("some text")

	rec := env.doJSON(t, http.MethodPost, "/api/qa/ask", map[string]any{"question": "hello", "page": 1})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d: %s", rec.Code, rec.Body)
	}
}

func TestAsk_ProviderFailureMapsTo500(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	env.installDoc("some text")

	rec := env.doJSON(t, http.MethodPost, "/api/qa/ask", map[string]any{"question": "hello", "page": 1})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d: %s", rec.Code, rec.Body)
	}
}

func TestChat_RoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	env.installDoc("alpha", "beta", "gamma")

	rec := env.doJSON(t, http.MethodPost, "/api/qa/chat", map[string]any{
		"messages": []llm.Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
		"currentPage": 2,
		"question":    "and now?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["answer"] != "stub answer" {
		t.Errorf("unexpected answer %q", resp["answer"])
	}
}

func TestChat_MissingQuestion(t *testing.T) {
	env := newTestEnv(t, nil)
	env.installDoc("alpha")
	rec := env.doJSON(t, http.MethodPost, "/api/qa/chat", map[string]any{"currentPage": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHistory_SaveAndGet(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.doJSON(t, http.MethodPost, "/api/qa/save_interaction", map[string]string{
		"filename": document.CanonicalName,
		"question": "Q1",
		"answer":   "A1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save failed: %d: %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodGet, "/api/qa/history/"+document.CanonicalName, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get history failed: %d", rec.Code)
	}
	var resp struct {
		History []document.Interaction `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.History) != 1 || resp.History[0].Question != "Q1" || resp.History[0].Answer != "A1" {
		t.Errorf("unexpected history: %+v", resp.History)
	}
}

func TestHistory_SaveMissingFields(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.doJSON(t, http.MethodPost, "/api/qa/save_interaction", map[string]string{"question": "Q"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestLLMStats_Endpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/qa/stats", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap llm.StatsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("malformed stats payload: %v", err)
	}
}

func TestReadPage_NoDocument(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.doJSON(t, http.MethodPost, "/api/tts/read-pdf", map[string]any{"page": 1, "voice_id": "v1"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
}

func TestReadPage_MissingFields(t *testing.T) {
	env := newTestEnv(t, nil)
	env.installDoc("text")
	rec := env.doJSON(t, http.MethodPost, "/api/tts/read-pdf", map[string]any{"page": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestReadPage_InvalidPage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.installDoc("only page")
	rec := env.doJSON(t, http.MethodPost, "/api/tts/read-pdf", map[string]any{"page": 5, "voice_id": "v1"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
}

func TestReadPage_EmptyPageText(t *testing.T) {
	env := newTestEnv(t, nil)
	env.installDoc("   ")
	rec := env.doJSON(t, http.MethodPost, "/api/tts/read-pdf", map[string]any{"page": 1, "voice_id": "v1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
}

func TestVoices_MissingProviderKey(t *testing.T) {
	env := newTestEnv(t, nil) // tts client built with empty key
	rec := env.do(t, http.MethodGet, "/api/tts/voices", nil, "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d: %s", rec.Code, rec.Body)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
