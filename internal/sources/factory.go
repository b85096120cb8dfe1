package sources

import (
	"fmt"
	"time"

	"github.com/chanforge/chanforge/internal/config"
	"github.com/chanforge/chanforge/internal/fetcher"
)

// defaultSourceHandlerFactory is the default implementation of SourceHandlerFactory
type defaultSourceHandlerFactory struct {
	timeout  time.Duration
	maxTries int
}

var _ SourceHandlerFactory = (*defaultSourceHandlerFactory)(nil)

// NewSourceHandlerFactory creates a new source handler factory. The timeout
// and retry bounds apply to HTTP sources; git and file sources ignore them.
func NewSourceHandlerFactory(timeout time.Duration, maxTries int) SourceHandlerFactory {
	return &defaultSourceHandlerFactory{timeout: timeout, maxTries: maxTries}
}

// CreateHandler creates a source handler for the given source type
func (f *defaultSourceHandlerFactory) CreateHandler(sourceType string) (SourceHandler, error) {
	switch sourceType {
	case config.SourceTypeGit:
		return NewGitSourceHandler(), nil
	case config.SourceTypeHTTP:
		return NewHTTPSourceHandler(fetcher.New(fetcher.Options{
			Timeout:  f.timeout,
			MaxTries: f.maxTries,
		})), nil
	case config.SourceTypeFile:
		return NewFileSourceHandler(), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}
