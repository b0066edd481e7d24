package bot

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// AuthorizationPolicy decides who may manage sticky messages: administrators,
// members holding an allowed role and allowlisted users.
type AuthorizationPolicy struct {
	users []string
	roles []string
}

func NewAuthorizationPolicy(users, roles []string) AuthorizationPolicy {
	return AuthorizationPolicy{users: slices.Clone(users), roles: slices.Clone(roles)}
}

// Allowed reports whether the author of an interaction passes the policy.
// Interactions outside a guild never do.
func (p AuthorizationPolicy) Allowed(interaction *discordgo.Interaction) bool {
	member := interaction.Member
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, role := range member.Roles {
		if slices.Contains(p.roles, role) {
			return true
		}
	}
	return member.User != nil && slices.Contains(p.users, member.User.ID)
}
