package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"sitecrawl/lib/crawl"

	"github.com/stretchr/testify/require"
)

// these tests need a local chrome, set SITECRAWL_CHROME=1 to run them
func newBrowser(t *testing.T) *BrowserFetcher {
	if os.Getenv("SITECRAWL_CHROME") == "" {
		t.Skip("SITECRAWL_CHROME is not set")
	}
	browser, err := NewBrowserFetcher(context.Background(), BrowserOptions{Headless: true})
	require.NoError(t, err)
	t.Cleanup(browser.Close)
	return browser
}

const lateList = `<html><body><ul id="list"></ul><script>
setTimeout(function () {
	document.getElementById("list").innerHTML = '<li class="item">rendered</li>';
}, 200);
</script></body></html>`

func TestBrowserFetcherWaitsForSelector(t *testing.T) {
	browser := newBrowser(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(lateList))
	}))
	defer server.Close()

	page, err := browser.FetchRendered(context.Background(), server.URL, "li.item", 5*time.Second)
	require.NoError(t, err)
	require.Contains(t, string(page.Body), "rendered")

	_, err = browser.FetchRendered(context.Background(), server.URL, "li.never", 500*time.Millisecond)
	require.ErrorIs(t, err, crawl.ErrRenderTimeout)
}

func TestBrowserFetcherStatus(t *testing.T) {
	browser := newBrowser(t)
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := browser.Fetch(context.Background(), server.URL)
	var fetchErr *crawl.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, http.StatusNotFound, fetchErr.Status)
}
