package markets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"go.uber.org/zap"
)

// newMarketListServer serves a fixed-length market list with offset/limit
// pagination and records every request's query parameters.
func newMarketListServer(t *testing.T, totalMarkets int, requests *[][2]int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		*requests = append(*requests, [2]int{offset, limit})

		count := totalMarkets - offset
		if count < 0 {
			count = 0
		}
		if count > limit {
			count = limit
		}

		body := `{"success":true,"data":{"markets":[`
		for i := 0; i < count; i++ {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{
				"address": "0x%040x",
				"questionTitle": "Question %d",
				"marketType": "score",
				"isActive": true
			}`, offset+i+1, offset+i+1)
		}
		body += `]}}`

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestPager_ShortFinalPage(t *testing.T) {
	logger := zap.NewNop()

	var requests [][2]int
	server := newMarketListServer(t, 25, &requests)
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, Logger: logger})
	pager := client.ListMarkets(10)
	ctx := context.Background()

	// 25 markets at page size 10: pages of 10, 10, 5, then exhaustion.
	var pageLengths []int
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page == nil {
			break
		}
		pageLengths = append(pageLengths, len(page))
	}

	if len(pageLengths) != 3 || pageLengths[0] != 10 || pageLengths[1] != 10 || pageLengths[2] != 5 {
		t.Errorf("expected pages 10,10,5, got %v", pageLengths)
	}

	if !pager.Done() {
		t.Error("expected pager to be exhausted")
	}

	// The short page already terminated the sequence: no fourth request.
	if len(requests) != 3 {
		t.Errorf("expected 3 requests, got %d: %v", len(requests), requests)
	}

	// Each cursor is the prior cursor plus the observed page length.
	expected := [][2]int{{0, 10}, {10, 10}, {20, 10}}
	for i, want := range expected {
		if requests[i] != want {
			t.Errorf("request %d: expected offset=%d limit=%d, got offset=%d limit=%d",
				i, want[0], want[1], requests[i][0], requests[i][1])
		}
	}

	// Past exhaustion the sequence is not resumable.
	page, err := pager.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != nil {
		t.Errorf("expected nil page after exhaustion, got %d markets", len(page))
	}
	if len(requests) != 3 {
		t.Errorf("expected no request after exhaustion, got %d total", len(requests))
	}
}

func TestPager_ExactMultipleTerminatesOnEmptyPage(t *testing.T) {
	logger := zap.NewNop()

	var requests [][2]int
	server := newMarketListServer(t, 20, &requests)
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, Logger: logger})
	pager := client.ListMarkets(10)
	ctx := context.Background()

	// 20 markets at page size 10: two full pages, then an empty page
	// terminates.
	var pageLengths []int
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page == nil {
			break
		}
		pageLengths = append(pageLengths, len(page))
	}

	if len(pageLengths) != 2 || pageLengths[0] != 10 || pageLengths[1] != 10 {
		t.Errorf("expected pages 10,10, got %v", pageLengths)
	}

	if len(requests) != 3 {
		t.Errorf("expected 3 requests (the last returning an empty page), got %d", len(requests))
	}

	if !pager.Done() {
		t.Error("expected pager to be exhausted")
	}
}

func TestPager_All(t *testing.T) {
	logger := zap.NewNop()

	var requests [][2]int
	server := newMarketListServer(t, 25, &requests)
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, Logger: logger})

	all, err := client.ListMarkets(10).All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(all) != 25 {
		t.Errorf("expected 25 markets, got %d", len(all))
	}

	// The flattened sequence has no duplicates and no gaps.
	seen := make(map[string]bool, len(all))
	for i := range all {
		addr := all[i].Address.Hex()
		if seen[addr] {
			t.Errorf("duplicate market %s in flattened sequence", addr)
		}
		seen[addr] = true
	}
}

func TestPager_RestartWithNewPageSize(t *testing.T) {
	logger := zap.NewNop()

	var requests [][2]int
	server := newMarketListServer(t, 7, &requests)
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, Logger: logger})
	ctx := context.Background()

	first, err := client.ListMarkets(10).All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A new pager restarts from offset zero.
	second, err := client.ListMarkets(5).All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != 7 || len(second) != 7 {
		t.Errorf("expected both sequences to see all 7 markets, got %d and %d", len(first), len(second))
	}

	if requests[0][0] != 0 || requests[1][0] != 0 {
		t.Errorf("expected both sequences to start at offset 0, got %v", requests[:2])
	}
}

func TestPager_InvalidPageSize(t *testing.T) {
	client := NewClient(&Config{BaseURL: "http://unused", Logger: zap.NewNop()})

	_, err := client.ListMarkets(0).Next(context.Background())
	if err == nil {
		t.Fatal("expected error for page size 0")
	}
}
