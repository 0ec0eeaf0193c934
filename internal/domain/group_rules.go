package domain

import "github.com/google/uuid"

func IsGroupMember(members []GroupMember, userID uuid.UUID) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func IsGroupAdmin(members []GroupMember, userID uuid.UUID) bool {
	for _, m := range members {
		if m.UserID == userID && m.Role == GroupRoleAdmin {
			return true
		}
	}
	return false
}

// CanManageMembers gates adding members: group admins only.
func CanManageMembers(actorID uuid.UUID, members []GroupMember) bool {
	return IsGroupAdmin(members, actorID)
}

// CanRemoveMember gates removal: an admin, or the target removing themselves.
func CanRemoveMember(actorID, targetID uuid.UUID, members []GroupMember) bool {
	if actorID == targetID {
		return true
	}
	return IsGroupAdmin(members, actorID)
}

// CanRemoveAdmin forbids removing the group's admin except by self-removal.
func CanRemoveAdmin(group *Group, targetID uuid.UUID, isSelfRemoval bool) bool {
	if group == nil || group.AdminID != targetID {
		return true
	}
	return isSelfRemoval
}

// NextAdmin picks the successor when the admin self-removes: the first
// remaining member in insertion order. Returns nil when the group empties.
func NextAdmin(members []GroupMember, leavingID uuid.UUID) *GroupMember {
	for i := range members {
		if members[i].UserID != leavingID {
			return &members[i]
		}
	}
	return nil
}
