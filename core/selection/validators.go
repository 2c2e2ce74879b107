package selection

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	dashRoleTag  = "dashrole"
	dashRoleText = "invalid role"
)

// InitValidators registers the selection-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(dashRoleTag, dashRoleValidation)
	core.RegisterCustomTranslation(validate, translator, dashRoleTag, dashRoleText)
}

func dashRoleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}
