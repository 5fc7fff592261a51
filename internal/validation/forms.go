// Package validation checks login and signup input before anything reaches the identity service.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
)

var (
	emailPattern  = regexp.MustCompile(`\S+@\S+\.\S+`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
)

// FieldErrors maps a form field (camelCase, as submitted) to its display message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// Fields extracts per-field messages from a validation error, or nil.
func Fields(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// messages holds the display copy per field and failing tag. "" is the fallback for a field.
var messages = map[string]map[string]string{
	"fullName":          {"": "Full Name is required."},
	"email":             {"required": "Email is required.", "portal_email": "Email is invalid."},
	"password":          {"": "Password is required."},
	"confirmPassword":   {"": "Passwords do not match."},
	"doctorId":          {"": "Doctor ID is required (hospital ID)."},
	"licenseNumber":     {"": "Medical license/registration number is required."},
	"specialization":    {"": "Specialization is required."},
	"department":        {"": "Department is required."},
	"qualification":     {"": "Qualification is required."},
	"yearsOfExperience": {"required": "Years of experience is required.", "digits": "Years of experience must be a number."},
	"staffId":           {"": "Staff ID is required for hospital staff."},
	"role":              {"": "Role is required."},
	"terms":             {"": "You must accept the terms and conditions."},
}

type loginForm struct {
	Email    string `json:"email"    validate:"required,portal_email"`
	Password string `json:"password" validate:"required"`
}

type commonSignup struct {
	FullName        string `json:"fullName"        validate:"required"`
	Email           string `json:"email"           validate:"required,portal_email"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Terms           bool   `json:"terms"           validate:"required"`
}

type doctorSignup struct {
	Common            commonSignup
	DoctorID          string `json:"doctorId"          validate:"required"`
	LicenseNumber     string `json:"licenseNumber"     validate:"required"`
	Specialization    string `json:"specialization"    validate:"required"`
	Department        string `json:"department"        validate:"required"`
	Qualification     string `json:"qualification"     validate:"required"`
	YearsOfExperience string `json:"yearsOfExperience" validate:"required,digits"`
}

type staffSignup struct {
	Common     commonSignup
	StaffID    string `json:"staffId"    validate:"required"`
	Department string `json:"department" validate:"required"`
	RoleTitle  string `json:"role"       validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	custom := map[string]validator.Func{
		"portal_email": func(fl validator.FieldLevel) bool { return emailPattern.MatchString(fl.Field().String()) },
		"digits":       func(fl validator.FieldLevel) bool { return digitsPattern.MatchString(fl.Field().String()) },
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Login validates login credentials.
func Login(creds domainauth.Credentials) error {
	return check(loginForm{Email: strings.TrimSpace(creds.Email), Password: creds.Password})
}

// Signup validates a signup profile against role's required fields.
func Signup(role domainauth.Role, p domainauth.SignupProfile) error {
	common := commonSignup{
		FullName:        strings.TrimSpace(p.FullName),
		Email:           strings.TrimSpace(p.Email),
		Password:        p.Password,
		ConfirmPassword: p.ConfirmPassword,
		Terms:           p.AcceptTerms,
	}

	switch role {
	case domainauth.RoleDoctor:
		return check(doctorSignup{
			Common:            common,
			DoctorID:          strings.TrimSpace(p.DoctorID),
			LicenseNumber:     strings.TrimSpace(p.LicenseNumber),
			Specialization:    strings.TrimSpace(p.Specialization),
			Department:        strings.TrimSpace(p.Department),
			Qualification:     strings.TrimSpace(p.Qualification),
			YearsOfExperience: strings.TrimSpace(p.YearsOfExperience),
		})
	case domainauth.RoleStaff:
		return check(staffSignup{
			Common:     common,
			StaffID:    strings.TrimSpace(p.StaffID),
			Department: strings.TrimSpace(p.Department),
			RoleTitle:  strings.TrimSpace(p.RoleTitle),
		})
	case domainauth.RoleAdmin:
		return check(common)
	default:
		return apperrors.ValidationField("role", "Please select a role.")
	}
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "validate form")
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = messageFor(fe.Field(), fe.Tag())
	}

	return &apperrors.AppError{
		Code:    apperrors.ErrCodeValidation,
		Message: "Please correct the highlighted fields.",
		Cause:   fields,
		Field:   firstField(fields),
	}
}

func messageFor(field, tag string) string {
	byTag, ok := messages[field]
	if !ok {
		return field + " is invalid."
	}
	if msg, ok := byTag[tag]; ok {
		return msg
	}
	if msg, ok := byTag[""]; ok {
		return msg
	}
	return field + " is invalid."
}

func firstField(fields FieldErrors) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
