package selection

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cache"
)

// Dashboard roles
const (
	RoleStudent             = "student"
	RoleTeacher             = "teacher"
	RoleInstituteAdmin      = "institute_admin"
	RoleParent              = "parent"
	RoleAttendanceMarker    = "attendance_marker"
	RoleOrganizationManager = "organization_manager"
)

var AllRoles = []string{
	RoleStudent,
	RoleTeacher,
	RoleInstituteAdmin,
	RoleParent,
	RoleAttendanceMarker,
	RoleOrganizationManager,
}

// Selection is a user's persisted dashboard context: the active role and the
// institute/class/subject/child/organization currently being browsed.
// It survives reloads so the dashboard reopens where the user left off.
type Selection struct {
	UserID         string      `json:"user_id" db:"user_id"`
	Role           string      `json:"role" db:"role"`
	InstituteID    null.String `json:"institute_id" db:"institute_id"`
	ClassID        null.String `json:"class_id" db:"class_id"`
	SubjectID      null.String `json:"subject_id" db:"subject_id"`
	ChildID        null.String `json:"child_id" db:"child_id"`
	OrganizationID null.String `json:"organization_id" db:"organization_id"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

// Scope maps the selection onto the cache scope its reads are keyed under.
func (s Selection) Scope() cache.Scope {
	return cache.Scope{
		UserID:      s.UserID,
		Role:        s.Role,
		InstituteID: s.InstituteID.String,
		ClassID:     s.ClassID.String,
		SubjectID:   s.SubjectID.String,
	}
}

// UpdateSelection defines what a dashboard may submit to switch context.
type UpdateSelection struct {
	Role           string `json:"role" validate:"required,dashrole"`
	InstituteID    string `json:"institute_id"`
	ClassID        string `json:"class_id"`
	SubjectID      string `json:"subject_id"`
	ChildID        string `json:"child_id"`
	OrganizationID string `json:"organization_id"`
}

var errInvalidSelection = errors.New("invalid selection")

func (us *UpdateSelection) Validate(validate *validator.Validate) error {
	us.Role = core.CleanString(us.Role, true /* lower */)
	us.InstituteID = core.CleanString(us.InstituteID)
	us.ClassID = core.CleanString(us.ClassID)
	us.SubjectID = core.CleanString(us.SubjectID)
	us.ChildID = core.CleanString(us.ChildID)
	us.OrganizationID = core.CleanString(us.OrganizationID)
	if err := validate.Struct(us); err != nil {
		return err
	}

	// cross-field rules the tags cannot express
	switch us.Role {
	case RoleParent:
		if us.ChildID == "" {
			return core.NewValidationError(errInvalidSelection,
				core.FieldError{Field: "child_id", Error: "a child is required for the parent role"})
		}
	case RoleOrganizationManager:
		if us.OrganizationID == "" {
			return core.NewValidationError(errInvalidSelection,
				core.FieldError{Field: "organization_id", Error: "an organization is required for the organization manager role"})
		}
	}
	return nil
}
