package search

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Disabled is the searcher used when no search credentials are configured.
// Every query degrades as if the provider had returned no results.
type Disabled struct {
	logger *logrus.Logger
}

var _ Searcher = (*Disabled)(nil)

// NewDisabled constructs the degraded searcher.
func NewDisabled(logger *logrus.Logger) *Disabled {
	return &Disabled{logger: logger}
}

func (d *Disabled) Search(_ context.Context, query string) Data {
	if d.logger != nil {
		d.logger.WithField("query", query).Debug("search disabled, returning degraded context")
	}
	return Data{Context: DegradedContext}
}
