// Package testutil provides testing utilities and helpers for the portal.
package testutil

import domainauth "github.com/target/pulsecare-portal/internal/domain/auth"

// SignupProfileBuilder provides a fluent interface for building signup profiles that pass validation.
type SignupProfileBuilder struct {
	p domainauth.SignupProfile
}

// NewSignupProfile starts from a complete profile for role.
func NewSignupProfile(role domainauth.Role) *SignupProfileBuilder {
	b := &SignupProfileBuilder{p: domainauth.SignupProfile{
		FullName:        "Avery Quinn",
		Email:           "avery@pulsecare.test",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		Phone:           "555-0100",
		AcceptTerms:     true,
	}}

	switch role {
	case domainauth.RoleDoctor:
		b.p.DoctorID = "DOC-1001"
		b.p.LicenseNumber = "LIC-42"
		b.p.Specialization = "Cardiology"
		b.p.Department = "Cardiology"
		b.p.Qualification = "MD"
		b.p.YearsOfExperience = "8"
	case domainauth.RoleStaff:
		b.p.StaffID = "STF-2002"
		b.p.Department = "Radiology"
		b.p.RoleTitle = "Technician"
	}

	return b
}

// WithEmail sets the email.
func (b *SignupProfileBuilder) WithEmail(email string) *SignupProfileBuilder {
	b.p.Email = email
	return b
}

// WithPasswords sets password and confirmation independently.
func (b *SignupProfileBuilder) WithPasswords(password, confirm string) *SignupProfileBuilder {
	b.p.Password = password
	b.p.ConfirmPassword = confirm
	return b
}

// WithoutTerms clears terms acceptance.
func (b *SignupProfileBuilder) WithoutTerms() *SignupProfileBuilder {
	b.p.AcceptTerms = false
	return b
}

// WithYearsOfExperience sets the doctor experience field verbatim.
func (b *SignupProfileBuilder) WithYearsOfExperience(v string) *SignupProfileBuilder {
	b.p.YearsOfExperience = v
	return b
}

// Build returns the profile.
func (b *SignupProfileBuilder) Build() domainauth.SignupProfile {
	return b.p
}

// Credentials returns login credentials matching the built profile.
func (b *SignupProfileBuilder) Credentials() domainauth.Credentials {
	return domainauth.Credentials{Email: b.p.Email, Password: b.p.Password}
}
