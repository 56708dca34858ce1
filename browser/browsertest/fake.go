// Package browsertest provides a scripted in-memory browser for exercising
// the scraper without Chrome. Pages are rendered to HTML on every query and
// read back through htmldom, so selectors behave as they would on a real page.
package browsertest

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"zillow-scraper/browser"
	"zillow-scraper/htmldom"
)

// NextStyle selects which markup the next-page control is rendered with
type NextStyle int

const (
	NextRel NextStyle = iota
	NextTitle
	NextPagination
	NextNone
)

// Card is one property card
type Card struct {
	Address string
	// Price is omitted from the markup when empty
	Price   string
	Details []string
}

// Page scripts one results page
type Page struct {
	// URL defaults to https://search.test/page/<n>
	URL   string
	Cards []Card
	// Initial is the number of cards rendered on load; zero renders all
	Initial int
	// PerScroll is the number of cards revealed by each ScrollBy
	PerScroll int
	// Caps limits rendered cards per pass, indexed by ScrollToTop calls on
	// this page. The last cap applies to later passes.
	Caps         []int
	ResultsCount string
	Next         NextStyle
	NextDisabled bool
	// NextAlwaysVisible shows the next control before every card is rendered
	NextAlwaysVisible bool
	// LoadFailures is the number of card waits that time out on this page
	LoadFailures int
	// QueryFailAfter fails card queries once this many have succeeded
	QueryFailAfter int
	ClickErr       error
	// NextQueryErr fails every query other than cards and the results count
	NextQueryErr error
	// StuckURL keeps the URL unchanged after the next control is clicked
	StuckURL bool
}

// Fake is a browser.Browser over scripted pages
type Fake struct {
	Pages     []*Page
	Selectors Selectors
	LaunchErr error
	NavErr    error
	// OnScroll runs after every ScrollBy with the 1-based page number
	OnScroll func(page int)

	Launches    int
	Quits       int
	Navigations []string
	Scrolls     int
	ScrollTops  int
	Reloads     int
	Clicks      int
	Screenshots []string

	current   int
	url       string
	rendered  int
	pass      int
	loadWaits int
	cardCalls int
	navigated bool
}

// Selectors are the markup hooks the fake renders; they must agree with the
// scraper's configured selectors.
type Selectors struct {
	Card         string
	ResultsCount string
}

// New creates a fake over pages using the default Zillow markup
func New(pages ...*Page) *Fake {
	for i, p := range pages {
		if p.URL == "" {
			p.URL = fmt.Sprintf("https://search.test/page/%d", i+1)
		}
	}
	return &Fake{
		Pages: pages,
		Selectors: Selectors{
			Card:         `[data-test="property-card"]`,
			ResultsCount: ".result-count",
		},
	}
}

// Launcher returns a launcher handing out this fake
func (f *Fake) Launcher() browser.Launcher {
	return browser.LauncherFunc(func(ctx context.Context) (browser.Browser, error) {
		f.Launches++
		if f.LaunchErr != nil {
			return nil, f.LaunchErr
		}
		return f, nil
	})
}

// MakeCards builds n distinct cards on street
func MakeCards(street string, n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = Card{
			Address: fmt.Sprintf("%d %s", i+1, street),
			Price:   fmt.Sprintf("$%d,000", 100+i),
			Details: []string{"3 bds", "2 ba", "1,500 sqft"},
		}
	}
	return cards
}

// CurrentPage returns the 1-based number of the loaded page
func (f *Fake) CurrentPage() int {
	return f.current + 1
}

func (f *Fake) page() *Page {
	return f.Pages[f.current]
}

func (f *Fake) load(index int) {
	f.current = index
	f.url = f.Pages[index].URL
	f.pass = 0
	f.cardCalls = 0
	f.rendered = f.capped(f.initial())
}

func (f *Fake) initial() int {
	p := f.page()
	if p.Initial == 0 {
		return len(p.Cards)
	}
	return p.Initial
}

func (f *Fake) capped(n int) int {
	p := f.page()
	limit := len(p.Cards)
	if len(p.Caps) > 0 {
		c := p.Caps[min(f.pass, len(p.Caps)-1)]
		limit = min(limit, c)
	}
	return min(n, limit)
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Navigations = append(f.Navigations, url)
	if f.NavErr != nil {
		return f.NavErr
	}
	index := 0
	for i, p := range f.Pages {
		if p.URL == url {
			index = i
		}
	}
	f.navigated = true
	f.load(index)
	f.url = url
	return nil
}

func (f *Fake) WaitDocumentLoaded(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !f.navigated {
		return fmt.Errorf("%w: no document", browser.ErrTimeout)
	}
	return nil
}

func (f *Fake) WaitElementVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if selector == f.Selectors.Card {
		f.loadWaits++
		if f.loadWaits <= f.page().LoadFailures {
			return fmt.Errorf("%w: %s", browser.ErrTimeout, selector)
		}
	}

	els, err := f.query(selector)
	if err != nil {
		return err
	}
	for _, el := range els {
		if ok, _ := el.Visible(); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", browser.ErrTimeout, selector)
}

func (f *Fake) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if selector == f.Selectors.Card {
		p := f.page()
		if p.QueryFailAfter > 0 && f.cardCalls >= p.QueryFailAfter {
			return nil, fmt.Errorf("query %s: target closed", selector)
		}
		f.cardCalls++
	} else if selector != f.Selectors.ResultsCount {
		if err := f.page().NextQueryErr; err != nil {
			return nil, fmt.Errorf("query %s: %w", selector, err)
		}
	}
	return f.query(selector)
}

func (f *Fake) query(selector string) ([]browser.Element, error) {
	doc, err := htmldom.Parse(f.render())
	if err != nil {
		return nil, err
	}
	return f.wrap(doc.FindAll(selector)), nil
}

func (f *Fake) ScrollBy(ctx context.Context, pixels int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Scrolls++
	f.rendered = f.capped(f.rendered + f.page().PerScroll)
	if f.OnScroll != nil {
		f.OnScroll(f.CurrentPage())
	}
	return nil
}

func (f *Fake) ScrollToTop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.ScrollTops++
	f.pass++
	f.rendered = max(f.rendered, f.capped(f.initial()))
	return nil
}

func (f *Fake) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Reloads++
	url := f.url
	f.load(f.current)
	f.url = url
	return nil
}

func (f *Fake) WaitURLChanged(ctx context.Context, previousURL string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.url == previousURL {
		return fmt.Errorf("%w: url still %s", browser.ErrTimeout, previousURL)
	}
	return nil
}

func (f *Fake) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.url, nil
}

func (f *Fake) Screenshot(ctx context.Context, path string) error {
	f.Screenshots = append(f.Screenshots, path)
	return nil
}

func (f *Fake) Quit() error {
	f.Quits++
	return nil
}

func (f *Fake) clickNext() error {
	f.Clicks++
	p := f.page()
	if p.ClickErr != nil {
		return p.ClickErr
	}
	if p.StuckURL || f.current+1 >= len(f.Pages) {
		return nil
	}
	f.loadWaits = 0
	f.load(f.current + 1)
	return nil
}

// render produces the markup of the current page in its current scroll state
func (f *Fake) render() string {
	p := f.page()
	var b strings.Builder
	b.WriteString("<html><body>")
	if p.ResultsCount != "" {
		fmt.Fprintf(&b, `<div class="result-count">%s</div>`, html.EscapeString(p.ResultsCount))
	}

	b.WriteString(`<ul class="photo-cards">`)
	for _, c := range p.Cards[:f.rendered] {
		b.WriteString(`<li><article data-test="property-card">`)
		fmt.Fprintf(&b, "<address>%s</address>", html.EscapeString(c.Address))
		if c.Price != "" {
			fmt.Fprintf(&b, `<span data-test="property-card-price">%s</span>`, html.EscapeString(c.Price))
		}
		if len(c.Details) > 0 {
			b.WriteString("<ul>")
			for _, d := range c.Details {
				fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(d))
			}
			b.WriteString("</ul>")
		}
		b.WriteString("</article></li>")
	}
	b.WriteString("</ul>")

	if p.Next != NextNone {
		attrs := " data-next"
		if !p.NextAlwaysVisible && f.rendered < len(p.Cards) {
			attrs += " hidden"
		}
		if p.NextDisabled {
			attrs += ` aria-disabled="true"`
		}
		switch p.Next {
		case NextRel:
			fmt.Fprintf(&b, `<nav><a rel="next" href="#"%s>Next</a></nav>`, attrs)
		case NextTitle:
			fmt.Fprintf(&b, `<nav><a title="Next page" href="#"%s>Next</a></nav>`, attrs)
		case NextPagination:
			fmt.Fprintf(&b, `<div class="search-pagination"><a href="#">1</a><a href="#"%s>Next</a></div>`, attrs)
		}
	}
	b.WriteString("</body></html>")
	return b.String()
}

func (f *Fake) wrap(els []browser.Element) []browser.Element {
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = element{Element: el, fake: f}
	}
	return out
}

// element routes clicks on the next-page control back to the fake
type element struct {
	browser.Element
	fake *Fake
}

func (e element) Click() error {
	if v, err := e.Attribute("data-next"); err == nil && v != nil {
		return e.fake.clickNext()
	}
	return e.Element.Click()
}

func (e element) Find(selector string) (browser.Element, error) {
	el, err := e.Element.Find(selector)
	if err != nil {
		return nil, err
	}
	return element{Element: el, fake: e.fake}, nil
}

func (e element) FindAll(selector string) ([]browser.Element, error) {
	els, err := e.Element.FindAll(selector)
	if err != nil {
		return nil, err
	}
	return e.fake.wrap(els), nil
}
