package domain

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// UserProfile models an operator of the backoffice.
type UserProfile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   Timestamp `json:"created_at"`
	LastLoginAt Timestamp `json:"last_login_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u UserProfile) IsAdmin() bool { return u.Role == RoleAdmin }
