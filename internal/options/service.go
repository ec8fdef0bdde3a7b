package options

import (
	"context"

	"github.com/stockroom-app/stockroom/internal/listquery"
)

// Service exposes reference option lists and builds filter configurations
// from them.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListOptions returns the ordered option list for a kind.
func (s *Service) ListOptions(ctx context.Context, kind Kind) ([]listquery.Option, error) {
	return s.repo.ListOptions(ctx, kind)
}

// FilterConfig builds a filter configuration for one dimension, prepending
// the "all" sentinel option.
func (s *Service) FilterConfig(ctx context.Context, key, label, allLabel string, kind Kind) (listquery.FilterConfig, error) {
	opts, err := s.repo.ListOptions(ctx, kind)
	if err != nil {
		return listquery.FilterConfig{}, err
	}
	all := []listquery.Option{{Value: listquery.SentinelAll, Label: allLabel}}
	return listquery.FilterConfig{
		Key:     key,
		Label:   label,
		Options: append(all, opts...),
	}, nil
}
