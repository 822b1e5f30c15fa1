package ledger

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Service serves cached trial balances.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// TrialBalance returns the period's trial balance. Concurrent callers for
// the same version share one build.
func (s *Service) TrialBalance(ctx context.Context, orgID, periodID string) (TrialBalance, error) {
	key, err := s.cache.BuildKey(ctx, "tb", orgID, periodID)
	if err != nil {
		return TrialBalance{}, err
	}
	ch := s.group.DoChan(key, func() (any, error) {
		var tb TrialBalance
		err := s.cache.FetchJSON(ctx, key, &tb, func(ctx context.Context) (any, error) {
			balances, err := s.repo.PeriodBalances(ctx, orgID, periodID)
			if err != nil {
				return nil, err
			}
			return BuildTrialBalance(orgID, periodID, balances), nil
		})
		return tb, err
	})
	select {
	case <-ctx.Done():
		return TrialBalance{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return TrialBalance{}, res.Err
		}
		return res.Val.(TrialBalance), nil
	}
}

// Invalidate bumps the period version after a posting or void.
func (s *Service) Invalidate(ctx context.Context, orgID, periodID string) error {
	ver, err := s.cache.Bump(ctx, orgID, periodID)
	if err != nil {
		return err
	}
	s.logger.Debug("ledger cache bumped",
		slog.String("org_id", orgID),
		slog.String("period_id", periodID),
		slog.Int64("version", ver))
	return nil
}
