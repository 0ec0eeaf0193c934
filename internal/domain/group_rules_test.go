package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMembershipPredicates(t *testing.T) {
	admin := uuid.New()
	member := uuid.New()
	outsider := uuid.New()
	members := []GroupMember{
		{UserID: admin, Role: GroupRoleAdmin},
		{UserID: member, Role: GroupRoleMember},
	}

	require.True(t, IsGroupMember(members, admin))
	require.True(t, IsGroupMember(members, member))
	require.False(t, IsGroupMember(members, outsider))

	require.True(t, IsGroupAdmin(members, admin))
	require.False(t, IsGroupAdmin(members, member))

	require.True(t, CanManageMembers(admin, members))
	require.False(t, CanManageMembers(member, members))
}

func TestCanRemoveMember(t *testing.T) {
	admin := uuid.New()
	member := uuid.New()
	other := uuid.New()
	members := []GroupMember{
		{UserID: admin, Role: GroupRoleAdmin},
		{UserID: member, Role: GroupRoleMember},
		{UserID: other, Role: GroupRoleMember},
	}

	require.True(t, CanRemoveMember(admin, member, members))
	require.True(t, CanRemoveMember(member, member, members), "self-removal")
	require.False(t, CanRemoveMember(member, other, members))
}

func TestCanRemoveAdmin(t *testing.T) {
	admin := uuid.New()
	member := uuid.New()
	group := &Group{AdminID: admin}

	require.False(t, CanRemoveAdmin(group, admin, false))
	require.True(t, CanRemoveAdmin(group, admin, true), "admin may remove themselves")
	require.True(t, CanRemoveAdmin(group, member, false), "non-admin target is unaffected")
}

func TestNextAdmin(t *testing.T) {
	admin := uuid.New()
	first := uuid.New()
	second := uuid.New()
	members := []GroupMember{
		{UserID: admin, Role: GroupRoleAdmin},
		{UserID: first, Role: GroupRoleMember},
		{UserID: second, Role: GroupRoleMember},
	}

	next := NextAdmin(members, admin)
	require.NotNil(t, next)
	require.Equal(t, first, next.UserID)

	require.Nil(t, NextAdmin([]GroupMember{{UserID: admin}}, admin), "empty group has no successor")
}
