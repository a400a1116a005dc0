package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniStoreConsole/internal/backend"
)

func TestProductFormParse(t *testing.T) {
	tests := []struct {
		name    string
		form    ProductForm
		want    backend.ProductInput
		wantMsg string
	}{
		{
			name: "valid",
			form: ProductForm{Name: " Pen ", MRP: "10.25", Stock: "7", Category: "Stationery"},
			want: backend.ProductInput{Name: "Pen", PriceCents: 1025, Stock: 7, Category: "Stationery"},
		},
		{name: "missing name", form: ProductForm{MRP: "1", Stock: "1"}, wantMsg: "All fields are required"},
		{name: "missing stock", form: ProductForm{Name: "Pen", MRP: "1"}, wantMsg: "All fields are required"},
		{name: "bad price", form: ProductForm{Name: "Pen", MRP: "ten", Stock: "1"}, wantMsg: "Price must be a non-negative number"},
		{name: "negative stock", form: ProductForm{Name: "Pen", MRP: "1", Stock: "-1"}, wantMsg: "Stock must be a non-negative whole number"},
		{name: "fractional stock", form: ProductForm{Name: "Pen", MRP: "1", Stock: "1.5"}, wantMsg: "Stock must be a non-negative whole number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.form.Parse()
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.ErrorIs(t, err, backend.ErrValidation)
			var ve *backend.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantMsg, ve.Message)
		})
	}
}

func TestSignInFormNormalizesEmail(t *testing.T) {
	req, err := SignInForm{Email: "  Clerk@Shop.Test", Password: "pw", CompanyCode: " ORG1 "}.Request()
	require.NoError(t, err)
	assert.Equal(t, "clerk@shop.test", req.Email)
	assert.Equal(t, "ORG1", req.CompanyCode)
	assert.False(t, req.IsAdminEmployee)
}

func TestSignInFormRequiresFields(t *testing.T) {
	_, err := SignInForm{Email: "clerk@shop.test", CompanyCode: "ORG1"}.Request()
	assert.ErrorIs(t, err, backend.ErrValidation)

	_, err = SignInForm{Email: "clerk@shop.test", Password: "pw"}.Request()
	assert.ErrorIs(t, err, backend.ErrValidation)

	_, err = SignInForm{Email: "Clerk <clerk@shop.test>", Password: "pw", CompanyCode: "ORG1"}.Request()
	assert.ErrorIs(t, err, backend.ErrValidation)
}

func TestSignUpFormsCheckPasswordLength(t *testing.T) {
	_, err := EmployeeSignUpForm{Name: "A", Email: "a@shop.test", Password: "12345", CompanyCode: "ORG1"}.Request()
	var ve *backend.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)

	req, err := AdminSignUpForm{Name: "A", OrgName: "Shop", Email: "a@shop.test", Password: "123456"}.Request()
	require.NoError(t, err)
	assert.Equal(t, "a@shop.test", req.AdminEmail)
}
