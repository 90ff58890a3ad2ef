package rbac

// 权限常量
const (
	PermissionManageProjects   = "project:manage"
	PermissionScoreProjects    = "project:score"
	PermissionViewDealroom     = "dealroom:view"
	PermissionRequestAccess    = "access_request:create"
	PermissionReviewAccess     = "access_request:review"
	PermissionManageThresholds = "threshold:manage"
	PermissionReplayOutbox     = "outbox:replay"
	PermissionSendMessages     = "message:send"
	PermissionUpdateTasks      = "task:update"
	PermissionRequestQuotes    = "quote:request"
	PermissionInviteExperts    = "expert:invite"
	PermissionRespondInvites   = "invite:respond"
)

// 角色常量
const (
	RoleFounder  = "founder"
	RoleExpert   = "expert"
	RoleInvestor = "investor"
	RoleAdmin    = "admin"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleFounder: {
		PermissionManageProjects,
		PermissionScoreProjects,
		PermissionSendMessages,
		PermissionUpdateTasks,
		PermissionRequestQuotes,
		PermissionInviteExperts,
	},
	RoleExpert: {
		PermissionSendMessages,
		PermissionUpdateTasks,
		PermissionRespondInvites,
	},
	RoleInvestor: {
		PermissionViewDealroom,
		PermissionRequestAccess,
		PermissionSendMessages,
	},
	RoleAdmin: {
		PermissionScoreProjects,
		PermissionReviewAccess,
		PermissionManageThresholds,
		PermissionReplayOutbox,
		PermissionSendMessages,
		PermissionUpdateTasks,
		PermissionRequestQuotes,
	},
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 检查角色是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "Forbidden"
}
