package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/wickedwords/word-chain-bot/database"
	"github.com/wickedwords/word-chain-bot/game"
	"github.com/wickedwords/word-chain-bot/logging"
	"github.com/wickedwords/word-chain-bot/metrics"
)

// RoleSyncer reconciles the reliable and failed roles with game state. All
// operations are diffs of desired versus actual membership, so repeated runs
// are idempotent and drift heals itself after an outage. Every failure is
// logged and swallowed: roles are decoration, not game state.
type RoleSyncer struct {
	session *discordgo.Session
	db      *database.Postgres
	states  *game.ServerStateManager
	logger  *logging.Logger
}

func NewRoleSyncer(session *discordgo.Session, db *database.Postgres, states *game.ServerStateManager, logger *logging.Logger) *RoleSyncer {
	if logger == nil {
		logger = logging.Default()
	}
	return &RoleSyncer{
		session: session,
		db:      db,
		states:  states,
		logger:  logger,
	}
}

// SyncReliable grants the reliable role to every member meeting the karma and
// accuracy thresholds and revokes it from everyone else.
func (r *RoleSyncer) SyncReliable(ctx context.Context, serverID int64) {
	reliableRoleID, _, _, ok := r.states.RoleSettings(serverID)
	if !ok || reliableRoleID == nil {
		return
	}

	members, err := r.db.ReliableMembers(ctx, serverID, game.ReliableRoleKarmaThreshold, game.ReliableRoleAccuracyThreshold)
	if err != nil {
		r.logger.WithServer(serverID).Error("error loading reliable members", "error", err.Error())
		metrics.RoleSyncFailCount.Add(1)
		return
	}
	desired := make(map[int64]struct{}, len(members))
	for _, id := range members {
		desired[id] = struct{}{}
	}

	r.reconcile(serverID, *reliableRoleID, desired)
}

// SyncFailed grants the failed role exclusively to the given member, or to
// nobody when the member is nil.
func (r *RoleSyncer) SyncFailed(ctx context.Context, serverID int64, failedMemberID *int64) {
	_, failedRoleID, _, ok := r.states.RoleSettings(serverID)
	if !ok || failedRoleID == nil {
		return
	}

	desired := make(map[int64]struct{}, 1)
	if failedMemberID != nil {
		desired[*failedMemberID] = struct{}{}
	}
	r.reconcile(serverID, *failedRoleID, desired)
}

// reconcile diffs the desired holders of a role against the guild's actual
// members and applies the difference.
func (r *RoleSyncer) reconcile(serverID, roleID int64, desired map[int64]struct{}) {
	guild := formatID(serverID)
	role := formatID(roleID)
	log := r.logger.WithServer(serverID)

	actual, err := r.membersWithRole(guild, role)
	if err != nil {
		log.Error("error listing role members", "role_id", roleID, "error", err.Error())
		metrics.RoleSyncFailCount.Add(1)
		return
	}

	for memberID := range desired {
		if _, has := actual[memberID]; has {
			continue
		}
		if err := r.session.GuildMemberRoleAdd(guild, formatID(memberID), role); err != nil {
			log.Warn("role grant failed", "member_id", memberID, "error", err.Error())
			metrics.RoleSyncFailCount.Add(1)
		}
	}
	for memberID := range actual {
		if _, keep := desired[memberID]; keep {
			continue
		}
		if err := r.session.GuildMemberRoleRemove(guild, formatID(memberID), role); err != nil {
			log.Warn("role revoke failed", "member_id", memberID, "error", err.Error())
			metrics.RoleSyncFailCount.Add(1)
		}
	}
}

// membersWithRole pages through the guild's members and collects the current
// holders of a role.
func (r *RoleSyncer) membersWithRole(guildID, roleID string) (map[int64]struct{}, error) {
	holders := make(map[int64]struct{})
	after := ""
	for {
		members, err := r.session.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return holders, nil
		}
		for _, m := range members {
			after = m.User.ID
			for _, role := range m.Roles {
				if role == roleID {
					id, err := parseID(m.User.ID)
					if err == nil {
						holders[id] = struct{}{}
					}
					break
				}
			}
		}
		if len(members) < 1000 {
			return holders, nil
		}
	}
}
