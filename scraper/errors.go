package scraper

import "fmt"

// WaitTimeoutError reports a results page whose listings never became visible
type WaitTimeoutError struct {
	Page int
	Err  error
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("page %d: listings did not load: %v", e.Page, e.Err)
}

func (e *WaitTimeoutError) Unwrap() error { return e.Err }

// NavigationError reports a failure to reach a results page
type NavigationError struct {
	Page int
	Err  error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to navigate to page %d: %v", e.Page, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ResultsCountParseError reports an unreadable total results count
type ResultsCountParseError struct {
	Text string
	Err  error
}

func (e *ResultsCountParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to read results count: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse results count %q", e.Text)
}

func (e *ResultsCountParseError) Unwrap() error { return e.Err }

// BrowserStartupError reports that no browser session could be started
type BrowserStartupError struct {
	Err error
}

func (e *BrowserStartupError) Error() string {
	return fmt.Sprintf("failed to start browser: %v", e.Err)
}

func (e *BrowserStartupError) Unwrap() error { return e.Err }
