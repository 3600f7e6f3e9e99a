package validator

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestValidatePasswordStrength(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		password string
		valid    bool
	}{
		{"Str0ng!pass", true},
		{"short1!", false},
		{"alllowercase1!", false},
		{"ALLUPPERCASE1!", false},
		{"NoDigitsHere!", false},
		{"NoSymbols123", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := v.ValidatePasswordStrength(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateEmail("ada@example.com"))
	assert.Error(t, v.ValidateEmail("not-an-email"))
	assert.Error(t, v.ValidateEmail(""))
}

func TestValidateExternalRef(t *testing.T) {
	v := NewValidator()

	valid := []string{"post-1", "3f2c9a4e-0d5b-4d8e-9a44-1b2c3d4e5f60", "client:abc.1_2"}
	for _, ref := range valid {
		assert.NoError(t, v.ValidateExternalRef(ref), ref)
	}

	invalid := []string{"", "-leading", "has space", "a/b", strings.Repeat("x", MaxExternalRefLength+1)}
	for _, ref := range invalid {
		assert.Error(t, v.ValidateExternalRef(ref), ref)
	}
}

func TestRegisterCustomValidators_BindingTags(t *testing.T) {
	RegisterCustomValidators()

	type form struct {
		Password string `binding:"required,containsuppercase,containslowercase,containsdigit,containssymbol"`
		Ref      string `binding:"omitempty,externalref"`
	}

	assert.NoError(t, binding.Validator.ValidateStruct(&form{Password: "Str0ng!pass", Ref: "post-1"}))
	assert.ErrorContains(t, binding.Validator.ValidateStruct(&form{Password: "str0ng!pass"}), "containsuppercase")
	assert.ErrorContains(t, binding.Validator.ValidateStruct(&form{Password: "Strong!pass"}), "containsdigit")
	assert.ErrorContains(t, binding.Validator.ValidateStruct(&form{Password: "Str0ngpass"}), "containssymbol")
	assert.ErrorContains(t, binding.Validator.ValidateStruct(&form{Password: "Str0ng!pass", Ref: "a/b"}), "externalref")
}
