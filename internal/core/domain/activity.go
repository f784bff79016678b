package domain

// ActivityAction names what happened to an entity.
type ActivityAction string

const (
	ActionCreate           ActivityAction = "create"
	ActionUpdate           ActivityAction = "update"
	ActionDelete           ActivityAction = "delete"
	ActionLogin            ActivityAction = "login"
	ActionLogout           ActivityAction = "logout"
	ActionInvite           ActivityAction = "invite"
	ActionAcceptInvitation ActivityAction = "accept_invitation"
	ActionCancel           ActivityAction = "cancel"
	ActionReactivate       ActivityAction = "reactivate"
	ActionStatusChange     ActivityAction = "status_change"
	ActionDeleteItem       ActivityAction = "delete_item"
	ActionAdjustStock      ActivityAction = "adjust_stock"
)

// EntityType names the kind of entity an activity refers to.
type EntityType string

const (
	EntityPackaging  EntityType = "packaging"
	EntityOrder      EntityType = "order"
	EntityUser       EntityType = "user"
	EntityInvitation EntityType = "invitation"
	EntityAuth       EntityType = "auth"
)

// ActivityRecord is an append-only audit entry.
type ActivityRecord struct {
	ID         string         `json:"id,omitempty"`
	Action     ActivityAction `json:"action"`
	EntityType EntityType     `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	EntityName string         `json:"entity_name,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	ActorID    string         `json:"user_id"`
	CreatedAt  Timestamp      `json:"created_at"`
	Actor      *UserRef       `json:"user,omitempty"`
}
