package scraper

import (
	"context"
	"errors"
	"testing"

	"zillow-scraper/browser"
	"zillow-scraper/browser/browsertest"
	"zillow-scraper/config"
	"zillow-scraper/htmldom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPageLocator_Strategies(t *testing.T) {
	tests := []struct {
		name  string
		style browsertest.NextStyle
		found bool
	}{
		{"rel attribute", browsertest.NextRel, true},
		{"title attribute", browsertest.NextTitle, true},
		{"pagination last link", browsertest.NextPagination, true},
		{"no control", browsertest.NextNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			fake := browsertest.New(&browsertest.Page{
				Cards: browsertest.MakeCards("Oak St", 2),
				Next:  tt.style,
			})
			require.NoError(t, fake.Navigate(ctx, "https://search.test/page/1"))

			el, err := NextPageLocator(config.DefaultSelectors().NextPage).Locate(ctx, fake)
			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, el)
				return
			}
			require.NotNil(t, el)
			text, err := el.Text()
			require.NoError(t, err)
			assert.Equal(t, "Next", text)
		})
	}
}

type failingLocator struct{ err error }

func (l failingLocator) Locate(context.Context, Querier) (browser.Element, error) {
	return nil, l.err
}

func TestFirstMatch_SkipsFailingStrategy(t *testing.T) {
	ctx := context.Background()
	fake := browsertest.New(&browsertest.Page{
		Cards: browsertest.MakeCards("Oak St", 1),
		Next:  browsertest.NextTitle,
	})
	require.NoError(t, fake.Navigate(ctx, "https://search.test/page/1"))

	boom := errors.New("detached node")
	fm := FirstMatch{failingLocator{boom}, SelectorLocator(`a[title="Next page"]`)}
	el, err := fm.Locate(ctx, fake)
	require.NoError(t, err)
	assert.NotNil(t, el)

	fm = FirstMatch{SelectorLocator(`a[rel="next"]`), failingLocator{boom}}
	el, err = fm.Locate(ctx, fake)
	assert.Nil(t, el)
	assert.ErrorIs(t, err, boom)
}

func TestNextPageLocator_StaticDocument(t *testing.T) {
	doc, err := htmldom.Parse(`<div class="search-pagination"><a href="/1">1</a><a href="/2" aria-disabled="true">Next</a></div>`)
	require.NoError(t, err)

	el, err := NextPageLocator(config.DefaultSelectors().NextPage).Locate(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, el)

	disabled, err := Disabled(el, "aria-disabled")
	require.NoError(t, err)
	assert.True(t, disabled)
}

func TestDisabled(t *testing.T) {
	doc, err := htmldom.Parse(`<a id="on" aria-disabled="false">a</a><a id="off" aria-disabled="true">b</a><a id="plain">c</a>`)
	require.NoError(t, err)

	tests := []struct {
		id   string
		attr string
		want bool
	}{
		{"#on", "aria-disabled", false},
		{"#off", "aria-disabled", true},
		{"#plain", "aria-disabled", false},
		{"#off", "", false},
	}
	for _, tt := range tests {
		el, err := doc.Find(tt.id)
		require.NoError(t, err)
		got, err := Disabled(el, tt.attr)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.id, tt.attr)
	}
}
