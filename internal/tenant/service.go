package tenant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nexthealth/careplatform/internal"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("loading tenant", err)
	}
	if t == nil {
		return nil, internal.ErrTenantNotFound
	}
	return t, nil
}

// ResolveFacilityCode maps a registration facility code to exactly one
// tenant. Implements auth.TenantDirectory.
func (s *Service) ResolveFacilityCode(ctx context.Context, code string) (int64, string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, "", internal.ErrTenantNotFound
	}

	t, err := s.repo.GetByFacilityCode(ctx, code)
	if err != nil {
		return 0, "", internal.NewInternalError("resolving facility code", err)
	}
	if t == nil {
		return 0, "", internal.ErrTenantNotFound
	}
	return t.ID, t.Name, nil
}
