package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/testutil"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name   string
		creds  domainauth.Credentials
		fields FieldErrors
	}{
		{
			name:  "valid",
			creds: domainauth.Credentials{Email: "a@b.com", Password: "x"},
		},
		{
			name:   "missing both",
			creds:  domainauth.Credentials{},
			fields: FieldErrors{"email": "Email is required.", "password": "Password is required."},
		},
		{
			name:   "malformed email",
			creds:  domainauth.Credentials{Email: "a@b", Password: "x"},
			fields: FieldErrors{"email": "Email is invalid."},
		},
		{
			name:   "whitespace email",
			creds:  domainauth.Credentials{Email: "   ", Password: "x"},
			fields: FieldErrors{"email": "Email is required."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Login(tt.creds)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.fields, Fields(err))
		})
	}
}

func TestSignup_ValidProfiles(t *testing.T) {
	for _, role := range domainauth.ChannelRoles {
		t.Run(string(role), func(t *testing.T) {
			assert.NoError(t, Signup(role, testutil.NewSignupProfile(role).Build()))
		})
	}
}

func TestSignup_Common(t *testing.T) {
	p := testutil.NewSignupProfile(domainauth.RoleAdmin).
		WithPasswords("secret", "different").
		WithoutTerms().
		Build()

	err := Signup(domainauth.RoleAdmin, p)
	require.Error(t, err)
	assert.Equal(t, FieldErrors{
		"confirmPassword": "Passwords do not match.",
		"terms":           "You must accept the terms and conditions.",
	}, Fields(err))
	assert.Equal(t, "confirmPassword", apperrors.GetField(err))
}

func TestSignup_DoctorFields(t *testing.T) {
	err := Signup(domainauth.RoleDoctor, domainauth.SignupProfile{
		FullName:          "Dr A",
		Email:             "a@b.com",
		Password:          "pw",
		ConfirmPassword:   "pw",
		AcceptTerms:       true,
		YearsOfExperience: "ten",
	})
	require.Error(t, err)

	fields := Fields(err)
	assert.Equal(t, "Doctor ID is required (hospital ID).", fields["doctorId"])
	assert.Equal(t, "Medical license/registration number is required.", fields["licenseNumber"])
	assert.Equal(t, "Specialization is required.", fields["specialization"])
	assert.Equal(t, "Department is required.", fields["department"])
	assert.Equal(t, "Qualification is required.", fields["qualification"])
	assert.Equal(t, "Years of experience must be a number.", fields["yearsOfExperience"])
	assert.NotContains(t, fields, "fullName")
}

func TestSignup_DoctorExperienceRequired(t *testing.T) {
	p := testutil.NewSignupProfile(domainauth.RoleDoctor).WithYearsOfExperience("").Build()
	assert.Equal(t, FieldErrors{"yearsOfExperience": "Years of experience is required."}, Fields(Signup(domainauth.RoleDoctor, p)))
}

func TestSignup_StaffFields(t *testing.T) {
	p := testutil.NewSignupProfile(domainauth.RoleAdmin).Build()

	err := Signup(domainauth.RoleStaff, p)
	require.Error(t, err)
	assert.Equal(t, FieldErrors{
		"staffId":    "Staff ID is required for hospital staff.",
		"department": "Department is required.",
		"role":       "Role is required.",
	}, Fields(err))
}

func TestSignup_UnknownRole(t *testing.T) {
	err := Signup(domainauth.RoleUser, domainauth.SignupProfile{})
	assert.True(t, apperrors.IsValidation(err))
	assert.Nil(t, Fields(err))
}

func TestFieldErrors_Error(t *testing.T) {
	assert.Equal(t, "invalid fields: email, password", FieldErrors{"password": "x", "email": "y"}.Error())
}
