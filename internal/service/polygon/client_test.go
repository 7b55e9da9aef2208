package polygon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"
	"github.com/ctrlaltdad/TakeStock/pkg/util"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(logger.Nop(), nil, WithBaseURL(srv.URL))
}

// 2026-08-27 and 2026-08-28 in unix milliseconds.
const aggsBody = `{"status":"OK","results":[
	{"t":1782864000000,"o":146,"h":149.5,"l":145.5,"c":149,"v":900},
	{"t":1782950400000,"o":149,"h":151,"l":148,"c":150,"v":1000}]}`

func TestFetchAggregates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v2/aggs/ticker/AAPL/range/1/day/") {
			if r.URL.Query().Get("apiKey") != "key" {
				t.Fatalf("apiKey not forwarded")
			}
			w.Write([]byte(aggsBody))
			return
		}
		w.Write([]byte(`{}`))
	})

	c := newTestClient(t, mux)
	bundle, err := c.Fetch(context.Background(), "AAPL", "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundle.Historical) != 2 {
		t.Fatalf("bars = %d, want 2", len(bundle.Historical))
	}
	if bundle.Historical[0].Date != util.UnixToDay(1782864000000) {
		t.Fatalf("timestamp not converted: %+v", bundle.Historical[0])
	}
	if bundle.Historical[1].Close != 150 || bundle.Historical[1].Volume != 1000 {
		t.Fatalf("bar not converted: %+v", bundle.Historical[1])
	}
}

func TestFetchErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ERROR","results":[]}`))
	})

	c := newTestClient(t, mux)
	_, err := c.Fetch(context.Background(), "AAPL", "key")
	if provider.KindOf(err) != provider.KindNoHistoricalData {
		t.Fatalf("kind = %q, want no_historical_data", provider.KindOf(err))
	}
}

func TestFetchEmptyResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":[]}`))
	})

	c := newTestClient(t, mux)
	_, err := c.Fetch(context.Background(), "NOPE", "key")
	if provider.KindOf(err) != provider.KindNoHistoricalData {
		t.Fatalf("kind = %q, want no_historical_data", provider.KindOf(err))
	}
}

func TestFetchInvalidCredential(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	c := newTestClient(t, mux)
	_, err := c.Fetch(context.Background(), "AAPL", "bad")
	if provider.KindOf(err) != provider.KindInvalidCredential {
		t.Fatalf("kind = %q, want invalid_credential", provider.KindOf(err))
	}
}

func TestFetchPrevCloseDegraded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/prev"):
			w.Write([]byte(`{"status":"OK","results":[{"t":1782950400000,"o":149,"h":151,"l":148,"c":150,"v":1000}]}`))
		case strings.HasPrefix(r.URL.Path, "/v2/aggs/ticker/AAPL/range/"):
			w.Write([]byte(aggsBody))
		default:
			w.Write([]byte(`{}`))
		}
	})

	c := newTestClient(t, mux)
	bundle, err := c.Fetch(context.Background(), "AAPL", "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := bundle.PreviousClose
	if q == nil {
		t.Fatalf("prev close missing")
	}
	if q.PreviousClose != q.Close {
		t.Fatalf("degraded quote must mirror close, got %v / %v", q.PreviousClose, q.Close)
	}
}

func TestFetchNews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/reference/news":
			w.Write([]byte(`{"results":[{"title":"Apple up","article_url":"https://x","published_utc":"2026-08-28T12:00:00Z","publisher":{"name":"Wire"}}]}`))
		case strings.HasPrefix(r.URL.Path, "/v2/aggs/ticker/AAPL/range/"):
			w.Write([]byte(aggsBody))
		default:
			w.Write([]byte(`{}`))
		}
	})

	c := newTestClient(t, mux)
	bundle, err := c.Fetch(context.Background(), "AAPL", "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundle.News) != 1 {
		t.Fatalf("news = %d items", len(bundle.News))
	}
	item := bundle.News[0]
	if item.Headline != "Apple up" || item.Source != "Wire" {
		t.Fatalf("news not converted: %+v", item)
	}
	if item.PublishedAt.IsZero() {
		t.Fatalf("published_utc not parsed")
	}
}
