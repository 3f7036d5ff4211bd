package tenant

import (
	"context"
	"time"
)

// Tenant is an isolated organizational scope (one municipality).
type Tenant struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	MunicipalityName   string    `json:"municipalityName"`
	FacilityCode       string    `json:"facilityCode"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (t *Tenant) Blocked() bool {
	return t.SubscriptionStatus == "BLOCKED"
}

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*Tenant, error)
	GetByFacilityCode(ctx context.Context, code string) (*Tenant, error)
}

type ServiceAPI interface {
	GetByID(ctx context.Context, id int64) (*Tenant, error)
	ResolveFacilityCode(ctx context.Context, code string) (int64, string, error)
}
