package employment

import (
	"github.com/nexthealth/careplatform/internal/core/common/validation"

	errors "github.com/nexthealth/careplatform/internal"
)

type DecideDTO struct {
	Accept bool   `json:"accept"`
	RoleID string `json:"roleId,omitempty"`
}

func (d DecideDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Accept {
		// An accepted employment must carry a role.
		v.Field("roleId", d.RoleID).Required()
	}
	return v.Validate()
}

type InviteDTO struct {
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
}

func (d InviteDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("userId", d.UserID).Required()
	v.Field("roleId", d.RoleID).Required()
	return v.Validate()
}

// CreateDTO attaches a user directly as an accepted member; the target
// user comes from the request path.
type CreateDTO struct {
	UserID string `json:"-"`
	RoleID string `json:"roleId"`
}

func (d CreateDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("userId", d.UserID).Required()
	v.Field("roleId", d.RoleID).Required()
	return v.Validate()
}

type UpdateDTO struct {
	IsActive *bool   `json:"isActive,omitempty"`
	RoleID   *string `json:"roleId,omitempty"`
}
