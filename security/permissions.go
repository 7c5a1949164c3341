package security

import (
	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

type Resource string

const (
	ResourceUser         Resource = "user"
	ResourceDepartment   Resource = "department"
	ResourceTimeRecord   Resource = "timeRecord"
	ResourceCorrection   Resource = "correction"
	ResourceWorkSchedule Resource = "workSchedule"
	ResourceReport       Resource = "report"
	ResourcePrinter      Resource = "printer"
)

// matrix is the single capability table consulted by every protected
// operation. Row scoping (own records only, own departments only) is
// applied by the operations themselves on top of these grants.
var matrix = map[models.Role]map[Resource][]Action{
	models.RoleManager: {
		ResourceUser:         {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage},
		ResourceDepartment:   {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage},
		ResourceTimeRecord:   {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage},
		ResourceCorrection:   {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage},
		ResourceWorkSchedule: {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage},
		ResourceReport:       {ActionRead, ActionManage},
		ResourcePrinter:      {ActionCreate, ActionRead},
	},
	models.RoleEmployee: {
		ResourceTimeRecord: {ActionCreate, ActionRead},
		// Delete is scoped to the employee's own pending requests by the
		// correction workflow itself.
		ResourceCorrection: {ActionCreate, ActionRead, ActionDelete},
		ResourceReport:     {ActionRead},
		ResourcePrinter:    {ActionCreate},
	},
}

// Can reports whether the role may perform the action on the resource.
// Administrators hold every permission.
func Can(role models.Role, action Action, resource Resource) bool {
	if role == models.RoleAdmin {
		return true
	}
	grants, ok := matrix[role]
	if !ok {
		return false
	}
	for _, a := range grants[resource] {
		if a == action || a == ActionManage {
			return true
		}
	}
	return false
}
