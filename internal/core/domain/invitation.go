package domain

import "time"

// InvitationTTL is how long a freshly sent or resent invitation stays valid.
const InvitationTTL = 7 * 24 * time.Hour

// Invitation is a pending account invitation.
type Invitation struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	InviteToken string    `json:"invite_token"`
	InvitedBy   string    `json:"invited_by"`
	ExpiresAt   Timestamp `json:"expires_at"`
	AcceptedAt  Timestamp `json:"accepted_at"`
	CreatedAt   Timestamp `json:"created_at"`
	Inviter     *UserRef  `json:"inviter,omitempty"`
}

// Expired reports whether the invitation can no longer be accepted at now.
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt.Time)
}
