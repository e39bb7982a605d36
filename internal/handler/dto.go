package handler

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/nyaruka/phonenumbers"

	"github.com/schoolgate/identity/internal/domain"
)

func documentTypeRule() validation.Rule {
	return validation.In(
		domain.DocumentIDCard,
		domain.DocumentForeignID,
		domain.DocumentPassport,
		domain.DocumentCitizenCard,
		domain.DocumentTaxID,
	)
}

// validPhone accepts international numbers only, e.g. +573001234567.
func validPhone(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return validation.NewError("validation_phone", "must be an international phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return validation.NewError("validation_phone", "must be a valid phone number")
	}
	return nil
}

type RegisterPayload struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone_number"`
}

func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&p.FullName, validation.Length(0, 255)),
		validation.Field(&p.DocumentType, documentTypeRule()),
		validation.Field(&p.Phone, validation.By(validPhone)),
	)
}

func (p RegisterPayload) toUser() *domain.User {
	return &domain.User{
		Email:          p.Email,
		FullName:       p.FullName,
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
		Phone:          p.Phone,
	}
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

type RoleCreatePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (p RoleCreatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(2, 64)),
		validation.Field(&p.Description, validation.Length(0, 255)),
	)
}

type GuardianCreatePayload struct {
	FullName       string `json:"full_name"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone_number"`
	Email          string `json:"email"`
}

func (p GuardianCreatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.Required, validation.Length(2, 255)),
		validation.Field(&p.DocumentType, documentTypeRule()),
		validation.Field(&p.Phone, validation.By(validPhone)),
		validation.Field(&p.Email, is.Email),
	)
}

type GuardianUpdatePayload struct {
	FullName       *string `json:"full_name"`
	DocumentType   *string `json:"document_type"`
	DocumentNumber *string `json:"document_number"`
	Phone          *string `json:"phone_number"`
	Email          *string `json:"email"`
}

func (p GuardianUpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.NilOrNotEmpty, validation.Length(2, 255)),
		validation.Field(&p.DocumentType, documentTypeRule()),
		validation.Field(&p.Phone, validation.By(validPhonePtr)),
		validation.Field(&p.Email, is.Email),
	)
}

type StudentCreatePayload struct {
	FullName       string `json:"full_name"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	GuardianID     string `json:"guardian_id"`
}

func (p StudentCreatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.Required, validation.Length(2, 255)),
		validation.Field(&p.DocumentType, documentTypeRule()),
		validation.Field(&p.GuardianID, is.UUIDv4),
	)
}

type StudentUpdatePayload struct {
	FullName       *string `json:"full_name"`
	DocumentType   *string `json:"document_type"`
	DocumentNumber *string `json:"document_number"`
	GuardianID     *string `json:"guardian_id"`
}

func (p StudentUpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.NilOrNotEmpty, validation.Length(2, 255)),
		validation.Field(&p.DocumentType, documentTypeRule()),
		validation.Field(&p.GuardianID, is.UUIDv4),
	)
}

func validPhonePtr(value any) error {
	if s, ok := value.(*string); ok && s != nil {
		return validPhone(*s)
	}
	return nil
}
