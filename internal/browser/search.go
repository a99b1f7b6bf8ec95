// internal/browser/search.go
package browser

import (
	"context"
	"errors"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/kanistore/storefront/internal/client"
)

// NoResultsText is shown when a search matches nothing.
const NoResultsText = "No Data Found"

// SearchView is a snapshot of the search overlay.
type SearchView struct {
	Query        string
	Results      []client.Product
	Searched     bool
	Notification string
}

// Empty reports whether a completed search matched nothing.
func (v SearchView) Empty() bool {
	return v.Searched && len(v.Results) == 0
}

// Text returns NoResultsText for an empty completed search.
func (v SearchView) Text() string {
	if v.Empty() {
		return NoResultsText
	}
	return ""
}

// SearchOverlay runs product searches as the user types. Each query
// supersedes the previous one: the older request is cancelled and its
// response, if it still arrives, is discarded.
type SearchOverlay struct {
	api client.CatalogAPI

	mu     sync.Mutex
	view   SearchView
	flight flight
}

func NewSearchOverlay(api client.CatalogAPI) *SearchOverlay {
	return &SearchOverlay{api: api}
}

func (s *SearchOverlay) View() SearchView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view
	v.Results = append([]client.Product(nil), s.view.Results...)
	return v
}

// SetQuery searches for text. A blank query clears the results without a
// request. Returns ErrSuperseded when a newer query replaced this one.
func (s *SearchOverlay) SetQuery(ctx context.Context, text string) error {
	query := strings.TrimSpace(text)

	s.mu.Lock()
	s.cancelLocked()
	s.flight.gen++
	gen := s.flight.gen
	s.view.Query = text
	if query == "" {
		s.view.Results = nil
		s.view.Searched = false
		s.view.Notification = ""
		s.mu.Unlock()
		return nil
	}
	ctx, s.flight.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	results, err := s.api.SearchProducts(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight.gen != gen {
		log.WithField("query", query).Debug("Discarding stale search response")
		return ErrSuperseded
	}
	s.cancelLocked()

	if err != nil {
		if client.IsCancelled(err) {
			return err
		}
		if errors.Is(err, client.ErrNotFound) {
			results = []client.Product{}
		} else {
			s.view.Notification = notificationMessage("search results", err)
			log.WithError(err).WithField("query", query).Warn("Search failed")
			return err
		}
	}

	s.view.Results = results
	s.view.Searched = true
	s.view.Notification = ""
	return nil
}

// Clear resets the query and results and cancels a pending search.
func (s *SearchOverlay) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.flight.gen++
	s.view = SearchView{}
}

// DismissNotification hides the last search failure.
func (s *SearchOverlay) DismissNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Notification = ""
}

func (s *SearchOverlay) cancelLocked() {
	if s.flight.cancel != nil {
		s.flight.cancel()
		s.flight.cancel = nil
	}
}
