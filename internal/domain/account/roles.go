package account

// Role constants
const (
	RolePlayer             = "player"
	RoleCoach              = "coach"
	RoleMedicalStaff       = "medicalStaff"
	RoleTrainingManagement = "trainingManagement"
	RoleManager            = "manager"
	RoleAdmin              = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{
	RolePlayer,
	RoleCoach,
	RoleMedicalStaff,
	RoleTrainingManagement,
	RoleManager,
	RoleAdmin,
}

// StaffLevel is the lowest hierarchy level counted as staff. Staff may
// record and read attendance for any player.
const StaffLevel = 2

// Permission names returned by /api/userinfo.
const (
	PermViewOwnSchedule       = "view_own_schedule"
	PermViewOwnAttendance     = "view_own_attendance"
	PermViewSchedule          = "view_schedule"
	PermCreateSchedule        = "create_schedule"
	PermEditSchedule          = "edit_schedule"
	PermDeleteSchedule        = "delete_schedule"
	PermApproveSchedule       = "approve_schedule"
	PermRecordAttendance      = "record_attendance"
	PermViewAttendanceReports = "view_attendance_reports"
	PermApproveAttendance     = "approve_attendance"
	PermUpdatePlayerStatus    = "update_player_status"
	PermManageDrills          = "manage_drills"
	PermManageUsers           = "manage_users"
	PermChat                  = "chat"
)

var roleLevels = map[string]int{
	RolePlayer:             1,
	RoleCoach:              2,
	RoleMedicalStaff:       2,
	RoleTrainingManagement: 3,
	RoleManager:            4,
	RoleAdmin:              5,
}

var trainingManagementPerms = []string{
	PermViewSchedule, PermCreateSchedule, PermEditSchedule, PermDeleteSchedule,
	PermRecordAttendance, PermViewAttendanceReports, PermUpdatePlayerStatus,
	PermManageDrills, PermChat,
}

var rolePermissions = map[string][]string{
	RolePlayer:             {PermViewOwnSchedule, PermViewOwnAttendance, PermChat},
	RoleCoach:              {PermViewSchedule, PermViewAttendanceReports, PermRecordAttendance, PermChat},
	RoleMedicalStaff:       {PermViewSchedule, PermViewAttendanceReports, PermUpdatePlayerStatus, PermChat},
	RoleTrainingManagement: trainingManagementPerms,
	RoleManager:            append(append([]string{}, trainingManagementPerms...), PermApproveAttendance, PermManageUsers),
	RoleAdmin: append(append([]string{}, trainingManagementPerms...),
		PermApproveAttendance, PermManageUsers, PermApproveSchedule),
}

// IsValidRole reports whether role is known.
func IsValidRole(role string) bool {
	_, ok := roleLevels[role]
	return ok
}

// Level returns the hierarchy level of role, or 0 when unknown.
func Level(role string) int {
	return roleLevels[role]
}

// HasRoleLevel reports whether role sits at or above min in the hierarchy.
func HasRoleLevel(role string, min int) bool {
	return Level(role) >= min
}

// Permissions returns a copy of the permissions granted to role.
func Permissions(role string) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role has perm.
func HasPermission(role, perm string) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// IsStaff reports whether role is coach, medicalStaff or anything above.
func IsStaff(role string) bool {
	return HasRoleLevel(role, StaffLevel)
}

// CanUpdateStatus reports whether actorRole may change the status of a user
// holding targetRole. Admins may change anyone; trainingManagement and
// medicalStaff may change players only.
func CanUpdateStatus(actorRole, targetRole string) bool {
	switch actorRole {
	case RoleAdmin:
		return true
	case RoleTrainingManagement, RoleMedicalStaff:
		return targetRole == RolePlayer
	}
	return false
}

// CanListByRole reports whether role may call the users-by-role listing.
func CanListByRole(role string) bool {
	return hasRole(role, []string{RoleAdmin, RoleTrainingManagement, RoleMedicalStaff})
}

// CanManageSchedules reports whether role may create, edit or delete schedules.
func CanManageSchedules(role string) bool {
	return role == RoleAdmin || role == RoleTrainingManagement
}

func hasRole(role string, set []string) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}
