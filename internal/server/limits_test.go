package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/go-bytepair/internal/server"
	"github.com/example/go-bytepair/internal/testutil"
	"github.com/example/go-bytepair/internal/tokenizer"
)

// ---------------------------------------------------------------------------
// request size limits
// ---------------------------------------------------------------------------

func TestEncode_OversizedTextRejectedAs413(t *testing.T) {
	h := newTestHandler(t, server.WithMaxTextBytes(10))

	rec := post(h, "/encode", `{"text":"`+strings.Repeat("x", 11)+`"}`)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413, got %d", rec.Code)
	}

	var errBody map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}

	if errBody["error"] == "" {
		t.Error("want non-empty error field")
	}
}

func TestEncode_TextAtExactLimitIsAccepted(t *testing.T) {
	h := newTestHandler(t, server.WithMaxTextBytes(5))

	rec := post(h, "/encode", `{"text":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 for exactly-limit text, got %d", rec.Code)
	}
}

func TestDecode_OversizedBodyRejectedAs413(t *testing.T) {
	h := newTestHandler(t, server.WithMaxTextBytes(4))

	// Body cap is 16 bytes.
	rec := post(h, "/decode", `{"codes":[97,97,97,97,97,97,97,97]}`)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// worker pool
// ---------------------------------------------------------------------------

// blockingCodec blocks Encode until release is closed.
type blockingCodec struct {
	*tokenizer.Tokenizer

	entered chan struct{}
	release chan struct{}
}

func (b *blockingCodec) Encode(text string) []tokenizer.Code {
	b.entered <- struct{}{}
	<-b.release

	return b.Tokenizer.Encode(text)
}

func TestEncode_WaitingRequestCancelledReturns503(t *testing.T) {
	codec := &blockingCodec{
		Tokenizer: newTrained(t, "aaaa"),
		entered:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
	h := server.NewHandler(codec, server.WithWorkers(1))

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		post(h, "/encode", `{"text":"aaaa"}`)
	}()

	<-codec.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/encode", strings.NewReader(`{"text":"aaaa"}`)).WithContext(ctx)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("want 503 while the only worker is busy, got %d", rec.Code)
	}

	close(codec.release)
	wg.Wait()
}

func TestEncode_ZeroWorkersIsUnlimited(t *testing.T) {
	h := newTestHandler(t, server.WithWorkers(0))

	var wg sync.WaitGroup

	codes := make([]int, 8)

	for i := range codes {
		wg.Add(1)

		go func() {
			defer wg.Done()

			codes[i] = post(h, "/encode", `{"text":"aaaa"}`).Code
		}()
	}

	wg.Wait()

	for i, c := range codes {
		if c != http.StatusOK {
			t.Errorf("request %d: want 200, got %d", i, c)
		}
	}
}

func TestDecode_LongRunExpansionRejectedAs413(t *testing.T) {
	h := server.NewHandler(newTrained(t, testutil.LongRun), server.WithMaxTextBytes(4096))

	// Code 293 expands to 2^38 bytes.
	rec := post(h, "/decode", `{"codes":[293]}`)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413, got %d: %s", rec.Code, rec.Body.String())
	}

	// Code 265 expands to 1024 bytes, within the limit.
	rec = post(h, "/decode", `{"codes":[265]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["text"] != strings.Repeat("=", 1024) {
		t.Errorf("text has %d bytes; want 1024 '='", len(body["text"]))
	}
}
