package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"zillow-scraper/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(address, price string) string {
	return fmt.Sprintf(`<article data-test="property-card"><address>%s</address>`+
		`<span data-test="property-card-price">%s</span><ul><li>2 bds</li></ul></article>`, address, price)
}

func page(next string, cards ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, c := range cards {
		b.WriteString(c)
	}
	if next != "" {
		b.WriteString(next)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher() *CollyFetcher {
	cfg := config.GetDefaultConfig()
	cfg.Scraper.FetchDelay = 0
	return NewCollyFetcher(cfg)
}

func TestCollyFetcher_FollowsNextLinks(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/homes/austin-tx_rb/": page(`<a rel="next" href="/homes/austin-tx_rb/2_p/">Next</a>`,
			card("1 Oak St", "$100,000"), card("2 Oak St", "$110,000")),
		"/homes/austin-tx_rb/2_p/": page(`<a rel="next" href="#" aria-disabled="true">Next</a>`,
			card("2 Oak St", "$110,000"), card("3 Oak St", "$120,000")),
	})

	got, err := newFetcher().Fetch(context.Background(), srv.URL+"/homes/austin-tx_rb/", 0)
	require.NoError(t, err)

	var addrs []string
	for _, l := range got {
		addrs = append(addrs, l.Address)
	}
	assert.Equal(t, []string{"1 Oak St", "2 Oak St", "3 Oak St"}, addrs)
}

func TestCollyFetcher_MaxPages(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/1": page(`<a title="Next page" href="/2">Next</a>`, card("1 Oak St", "$1")),
		"/2": page("", card("2 Oak St", "$2")),
	})

	got, err := newFetcher().Fetch(context.Background(), srv.URL+"/1", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCollyFetcher_StopsOnRepeatedPage(t *testing.T) {
	repeated := page(`<a rel="next" href="/3">Next</a>`, card("5 Elm St", "$5"))
	srv := newServer(t, map[string]string{
		"/1": page(`<a rel="next" href="/2">Next</a>`, card("1 Elm St", "$1"), card("5 Elm St", "$5")),
		"/2": repeated,
		"/3": page("", card("9 Elm St", "$9")),
	})

	got, err := newFetcher().Fetch(context.Background(), srv.URL+"/1", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCollyFetcher_FirstPageError(t *testing.T) {
	srv := newServer(t, map[string]string{})

	_, err := newFetcher().Fetch(context.Background(), srv.URL+"/missing", 0)
	require.Error(t, err)
}

func TestCollyFetcher_StopsOnLinkCycle(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/1": page(`<a rel="next" href="/2">Next</a>`, card("1 Elm St", "$1")),
		"/2": page(`<a rel="next" href="/1">Next</a>`, card("2 Elm St", "$2")),
	})

	got, err := newFetcher().Fetch(context.Background(), srv.URL+"/1", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
