package htmldom

import (
	"testing"

	"zillow-scraper/browser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div class="card"><span class="price">$1</span></div>
<div class="card" style="display: none"><span class="price">$2</span></div>
<section hidden><div class="card"><span class="price">$3</span></div></section>
<a rel="next" href="/page/2" aria-disabled="true">Next</a>
</body></html>`

func TestDocument_FindAll(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)

	cards := doc.FindAll(".card")
	require.Len(t, cards, 3)

	var visible []bool
	for _, c := range cards {
		v, err := c.Visible()
		require.NoError(t, err)
		visible = append(visible, v)
	}
	assert.Equal(t, []bool{true, false, false}, visible)

	price, err := cards[1].Find(".price")
	require.NoError(t, err)
	text, err := price.Text()
	require.NoError(t, err)
	assert.Equal(t, "$2", text)
}

func TestElement_Attribute(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)

	next, err := doc.Find(`a[rel="next"]`)
	require.NoError(t, err)

	disabled, err := next.Attribute("aria-disabled")
	require.NoError(t, err)
	require.NotNil(t, disabled)
	assert.Equal(t, "true", *disabled)

	title, err := next.Attribute("title")
	require.NoError(t, err)
	assert.Nil(t, title)

	assert.ErrorIs(t, next.Click(), browser.ErrNotInteractive)
}

func TestFind_NotFound(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)

	_, err = doc.Find(".missing")
	assert.ErrorIs(t, err, browser.ErrElementNotFound)

	cards := doc.FindAll(".card")
	_, err = cards[0].Find("address")
	assert.ErrorIs(t, err, browser.ErrElementNotFound)

	items, err := cards[0].FindAll("li")
	require.NoError(t, err)
	assert.Empty(t, items)
}
