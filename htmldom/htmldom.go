// Package htmldom exposes a parsed HTML document through the browser.Element
// interface so saved or statically fetched pages go through the same card
// extraction as the live browser.
package htmldom

import (
	"context"
	"fmt"
	"io"
	"strings"

	"zillow-scraper/browser"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed HTML page
type Document struct {
	doc *goquery.Document
}

// Parse parses HTML content
func Parse(htmlContent string) (*Document, error) {
	return ParseReader(strings.NewReader(htmlContent))
}

// ParseReader parses HTML from r
func ParseReader(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// FindAll returns every element matching selector in document order
func (d *Document) FindAll(selector string) []browser.Element {
	return wrap(d.doc.Find(selector))
}

// QueryAll is FindAll in the form the scraper's locators query pages
func (d *Document) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.FindAll(selector), nil
}

// Find returns the first element matching selector
func (d *Document) Find(selector string) (browser.Element, error) {
	return first(d.doc.Selection, selector)
}

// Element wraps a single goquery node
type Element struct {
	s *goquery.Selection
}

// NewElement wraps the first node of s
func NewElement(s *goquery.Selection) Element {
	return Element{s: s.First()}
}

// Text returns the combined text of the node and its descendants
func (e Element) Text() (string, error) {
	return e.s.Text(), nil
}

// Attribute returns the attribute value or nil when absent
func (e Element) Attribute(name string) (*string, error) {
	v, ok := e.s.Attr(name)
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// Visible reports false for nodes hidden by the hidden attribute or an inline
// display:none on the node or one of its ancestors.
func (e Element) Visible() (bool, error) {
	for n := e.s; n.Length() > 0; n = n.Parent() {
		if _, hidden := n.Attr("hidden"); hidden {
			return false, nil
		}
		style := strings.ReplaceAll(strings.ToLower(n.AttrOr("style", "")), " ", "")
		if strings.Contains(style, "display:none") {
			return false, nil
		}
	}
	return true, nil
}

// Click always fails; static documents are not interactive
func (e Element) Click() error {
	return browser.ErrNotInteractive
}

// Find returns the first descendant matching selector
func (e Element) Find(selector string) (browser.Element, error) {
	return first(e.s, selector)
}

// FindAll returns the descendants matching selector
func (e Element) FindAll(selector string) ([]browser.Element, error) {
	return wrap(e.s.Find(selector)), nil
}

func first(s *goquery.Selection, selector string) (browser.Element, error) {
	found := s.Find(selector)
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return NewElement(found), nil
}

func wrap(s *goquery.Selection) []browser.Element {
	out := make([]browser.Element, 0, s.Length())
	s.Each(func(_ int, node *goquery.Selection) {
		out = append(out, Element{s: node})
	})
	return out
}
