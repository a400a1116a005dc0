package console

import (
	"net/mail"
	"strconv"
	"strings"

	"MiniStoreConsole/internal/backend"
)

const minPasswordLen = 6

// Parse validates the form and converts it to the backend payload.
func (f ProductForm) Parse() (backend.ProductInput, error) {
	name := strings.TrimSpace(f.Name)
	mrp := strings.TrimSpace(f.MRP)
	stock := strings.TrimSpace(f.Stock)

	if name == "" || mrp == "" || stock == "" {
		return backend.ProductInput{}, backend.Invalid("", "All fields are required")
	}

	price, err := strconv.ParseFloat(mrp, 64)
	if err != nil || price < 0 {
		return backend.ProductInput{}, backend.Invalid("mrp", "Price must be a non-negative number")
	}
	qty, err := strconv.Atoi(stock)
	if err != nil || qty < 0 {
		return backend.ProductInput{}, backend.Invalid("stock", "Stock must be a non-negative whole number")
	}

	return backend.ProductInput{
		Name:       name,
		PriceCents: backend.ToCents(price),
		Stock:      qty,
		Category:   strings.TrimSpace(f.Category),
	}, nil
}

type SignInForm struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyCode string `json:"companyCode"`
	Admin       bool   `json:"isAdminEmployee"`
}

func (f SignInForm) Request() (backend.SignInRequest, error) {
	email, err := parseEmail(f.Email)
	if err != nil {
		return backend.SignInRequest{}, err
	}
	if f.Password == "" {
		return backend.SignInRequest{}, backend.Invalid("password", "Password is required")
	}
	code := strings.TrimSpace(f.CompanyCode)
	if code == "" {
		return backend.SignInRequest{}, backend.Invalid("companyCode", "Company code is required")
	}

	return backend.SignInRequest{
		Email:           email,
		Password:        f.Password,
		CompanyCode:     code,
		IsAdminEmployee: f.Admin,
	}, nil
}

type AdminSignUpForm struct {
	Name     string `json:"name"`
	OrgName  string `json:"orgName"`
	Email    string `json:"adminEmail"`
	Password string `json:"adminPassword"`
}

func (f AdminSignUpForm) Request() (backend.AdminSignUp, error) {
	name := strings.TrimSpace(f.Name)
	org := strings.TrimSpace(f.OrgName)
	if name == "" || org == "" {
		return backend.AdminSignUp{}, backend.Invalid("", "All fields are required")
	}
	email, err := parseEmail(f.Email)
	if err != nil {
		return backend.AdminSignUp{}, err
	}
	if err := checkPassword(f.Password); err != nil {
		return backend.AdminSignUp{}, err
	}
	return backend.AdminSignUp{Name: name, OrgName: org, AdminEmail: email, AdminPassword: f.Password}, nil
}

type EmployeeSignUpForm struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyCode string `json:"companyCode"`
}

func (f EmployeeSignUpForm) Request() (backend.EmployeeSignUp, error) {
	name := strings.TrimSpace(f.Name)
	code := strings.TrimSpace(f.CompanyCode)
	if name == "" || code == "" {
		return backend.EmployeeSignUp{}, backend.Invalid("", "All fields are required")
	}
	email, err := parseEmail(f.Email)
	if err != nil {
		return backend.EmployeeSignUp{}, err
	}
	if err := checkPassword(f.Password); err != nil {
		return backend.EmployeeSignUp{}, err
	}
	return backend.EmployeeSignUp{Name: name, Email: email, Password: f.Password, CompanyCode: code}, nil
}

func parseEmail(raw string) (string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", backend.Invalid("email", "Email is required")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", backend.Invalid("email", "Invalid email address")
	}
	return raw, nil
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLen {
		return backend.Invalid("password", "Password must be at least 6 characters")
	}
	return nil
}
