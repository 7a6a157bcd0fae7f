package policy

import (
	"time"

	"taskboard-backend/models"
)

// Identity is the caller derived from a bearer token for the lifetime of one
// request. A nil *Identity means the caller is anonymous.
type Identity struct {
	ID                 string
	Role               models.Role
	IsPremium          bool
	SubscriptionExpiry *time.Time
}

func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

// CanRead decides read visibility: public tasks are visible to everyone,
// private tasks only to their owner, their assignee, or an admin.
func CanRead(id *Identity, task models.Task) bool {
	if task.IsPublic {
		return true
	}
	if id == nil {
		return false
	}
	if id.IsAdmin() || id.ID == task.OwnerId {
		return true
	}
	return task.AssignedTo != nil && id.ID == *task.AssignedTo
}

// CanWrite decides mutation rights: owner or admin only. Assignees can see a
// task but not change it.
func CanWrite(id Identity, task models.Task) bool {
	return id.IsAdmin() || id.ID == task.OwnerId
}

// CanSetHighPriority gates priority=high. Premium status is re-checked
// against the clock here, not at token-issue time: a subscription that
// expired between login and this request must deny.
func CanSetHighPriority(id Identity, now time.Time) bool {
	if id.IsAdmin() {
		return true
	}
	return id.IsPremium && id.SubscriptionExpiry != nil && id.SubscriptionExpiry.After(now)
}
