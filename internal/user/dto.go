package user

import (
	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/core/common/validation"
)

type ResetPasswordDTO struct {
	ResetTwoFactor bool `json:"resetTwoFactor"`
}

// validatePathID covers the user id path parameter shared by the admin routes.
func validatePathID(id string) *internal.AppError {
	v := validation.NewValidator()
	v.Field("userId", id).Required()
	return v.Validate()
}
