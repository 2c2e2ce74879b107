package selection_test

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/selection"
)

func newValidator() *validator.Validate {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	selection.InitValidators(validate, translator)
	return validate
}

func TestUpdateSelection_validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name      string
		data      selection.UpdateSelection
		wantField string // expect a *core.ValidationError on this field
		wantErr   bool   // any other validation failure
	}{
		{
			name: "teacher ok",
			data: selection.UpdateSelection{Role: selection.RoleTeacher, InstituteID: "inst1"},
		},
		{
			name:    "role required",
			data:    selection.UpdateSelection{InstituteID: "inst1"},
			wantErr: true,
		},
		{
			name:    "unknown role",
			data:    selection.UpdateSelection{Role: "headmaster"},
			wantErr: true,
		},
		{
			name:      "parent requires a child",
			data:      selection.UpdateSelection{Role: selection.RoleParent},
			wantField: "child_id",
		},
		{
			name: "parent with child ok",
			data: selection.UpdateSelection{Role: selection.RoleParent, ChildID: "c1"},
		},
		{
			name:      "organization manager requires an organization",
			data:      selection.UpdateSelection{Role: selection.RoleOrganizationManager},
			wantField: "organization_id",
		},
		{
			name: "organization manager with organization ok",
			data: selection.UpdateSelection{Role: selection.RoleOrganizationManager, OrganizationID: "org1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			switch {
			case tt.wantField != "":
				var vErr *core.ValidationError
				require.Error(t, err)
				require.IsType(t, vErr, err)
				vErr = err.(*core.ValidationError)
				require.Len(t, vErr.Fields, 1)
				assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
			case tt.wantErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateSelection_validateCleansInput(t *testing.T) {
	validate := newValidator()

	data := selection.UpdateSelection{Role: "  Teacher ", InstituteID: " inst1 "}
	require.NoError(t, data.Validate(validate))
	assert.Equal(t, selection.RoleTeacher, data.Role)
	assert.Equal(t, "inst1", data.InstituteID)
}
