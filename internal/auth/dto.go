package auth

import (
	"github.com/nexthealth/careplatform/internal/core/common/validation"

	errors "github.com/nexthealth/careplatform/internal"
)

const minPasswordLength = 8

type LoginDTO struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"twoFactorCode,omitempty"`
}

func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type RegisterDTO struct {
	FacilityCode string `json:"facilityCode"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

func (d RegisterDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("facilityCode", d.FacilityCode).Required()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(minPasswordLength)
	return v.Validate()
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (d ChangePasswordDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("currentPassword", d.CurrentPassword).Required()
	v.Field("newPassword", d.NewPassword).Required().MinLength(minPasswordLength)
	return v.Validate()
}

// TwoFactorCodeDTO is shared by verify and validate. Format is checked
// here so malformed input never reaches the TOTP engine.
type TwoFactorCodeDTO struct {
	Code string `json:"code"`
}

func (d TwoFactorCodeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("code", d.Code).Required().Numeric().ExactLength(6)
	return v.Validate()
}

type TwoFactorDisableDTO struct {
	Password string `json:"password"`
}

func (d TwoFactorDisableDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("password", d.Password).Required()
	return v.Validate()
}
