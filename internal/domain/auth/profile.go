package auth

// SignupProfile is the union of every field a role-scoped signup form collects.
// Payload selects the subset a given role's endpoint accepts.
type SignupProfile struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Gender          string
	DateOfBirth     string
	Shift           string
	AcceptTerms     bool

	// doctor
	DoctorID          string
	LicenseNumber     string
	Specialization    string
	Qualification     string
	YearsOfExperience string

	// doctor and staff
	Department string

	// staff
	StaffID   string
	RoleTitle string
}

// Payload builds the request body for role's signup endpoint.
// Keys follow the identity service's camelCase contract.
func (p SignupProfile) Payload(role Role) map[string]any {
	body := map[string]any{
		"fullName":        p.FullName,
		"email":           p.Email,
		"password":        p.Password,
		"confirmPassword": p.ConfirmPassword,
		"phone":           p.Phone,
		"terms":           p.AcceptTerms,
	}

	switch role {
	case RoleDoctor:
		body["doctorId"] = p.DoctorID
		body["licenseNumber"] = p.LicenseNumber
		body["specialization"] = p.Specialization
		body["department"] = p.Department
		body["qualification"] = p.Qualification
		body["yearsOfExperience"] = p.YearsOfExperience
		setIfPresent(body, "gender", p.Gender)
		setIfPresent(body, "dateOfBirth", p.DateOfBirth)
		setIfPresent(body, "shift", p.Shift)
	case RoleStaff:
		body["staffId"] = p.StaffID
		body["department"] = p.Department
		body["role"] = p.RoleTitle
		setIfPresent(body, "gender", p.Gender)
		setIfPresent(body, "dateOfBirth", p.DateOfBirth)
		setIfPresent(body, "shift", p.Shift)
	}

	return body
}

func setIfPresent(body map[string]any, key, value string) {
	if value != "" {
		body[key] = value
	}
}

// PasswordStrength is a display hint shown next to signup password fields.
type PasswordStrength string

const (
	StrengthNone   PasswordStrength = ""
	StrengthWeak   PasswordStrength = "Weak"
	StrengthMedium PasswordStrength = "Medium"
	StrengthStrong PasswordStrength = "Strong"
)

// RatePassword grades pw purely by length.
func RatePassword(pw string) PasswordStrength {
	n := len([]rune(pw))
	switch {
	case n == 0:
		return StrengthNone
	case n <= 6:
		return StrengthWeak
	case n <= 10:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}
