package page

import (
	"context"
	"fmt"
	"sync"

	"sharectl/internal/share"
)

// Fetcher retrieves a server page by path.
type Fetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Session holds the page most recently loaded from the server. Its meta
// tags are the CSRF source for every mutating call.
type Session struct {
	fetcher    Fetcher
	tokenMeta  string
	headerMeta string

	mu  sync.RWMutex
	doc *Document
}

// NewSession creates a Session that reads the CSRF token and header name
// from the meta tags named tokenMeta and headerMeta.
func NewSession(fetcher Fetcher, tokenMeta, headerMeta string) *Session {
	return &Session{fetcher: fetcher, tokenMeta: tokenMeta, headerMeta: headerMeta}
}

// Load fetches path, parses it and makes it the current page.
func (s *Session) Load(ctx context.Context, path string) (*Document, error) {
	body, err := s.fetcher.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	doc, err := ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	s.Use(doc)
	return doc, nil
}

// Use makes doc the current page.
func (s *Session) Use(doc *Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

// Current returns the current page, or nil before the first Load.
func (s *Session) Current() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// CSRF returns the anti-forgery header name and token of the current page.
func (s *Session) CSRF(context.Context) (string, string, error) {
	doc := s.Current()
	if doc == nil {
		return "", "", fmt.Errorf("no page loaded: %w", share.ErrMissingCSRF)
	}
	header, token := doc.Meta(s.headerMeta), doc.Meta(s.tokenMeta)
	if header == "" || token == "" {
		return "", "", fmt.Errorf("meta %s/%s: %w", s.headerMeta, s.tokenMeta, share.ErrMissingCSRF)
	}
	return header, token, nil
}
