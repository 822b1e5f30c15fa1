package accounts

import (
	"context"
	"errors"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, orgID string) ([]Account, error) {
	return s.repo.List(ctx, orgID)
}

// AccountExists reports whether the account is known and active in the
// organisation's chart. Inactive accounts take no new postings.
func (s *Service) AccountExists(ctx context.Context, orgID, accountID string) (bool, error) {
	acc, err := s.repo.Get(ctx, orgID, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return acc.IsActive, nil
}
