package domain

type Profile struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Viewer is the authenticated caller with its role resolved once per request.
type Viewer struct {
	UserID  string
	Profile *Profile
	Role    Role
}

func NewViewer(userID string, profile *Profile) Viewer {
	role := RoleCustomer
	if profile != nil && profile.IsAdmin {
		role = RoleAdmin
	}
	return Viewer{UserID: userID, Profile: profile, Role: role}
}

func (v Viewer) CanManageOrders() bool {
	return v.Role == RoleAdmin
}

func (v Viewer) CanView(o *Order) bool {
	return v.CanManageOrders() || o.UserID == v.UserID
}
