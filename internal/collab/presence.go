package collab

import (
	"sort"

	"github.com/flowcanvas/backend/internal/model"
)

// Presence derives the human-readable list of active users per room from
// the room membership and the session registry. It holds no state of its
// own.
type Presence struct {
	rooms    *Rooms
	registry *Registry
}

// NewPresence creates a presence view over the given rooms and registry.
func NewPresence(rooms *Rooms, registry *Registry) *Presence {
	return &Presence{rooms: rooms, registry: registry}
}

// ActiveUsers returns the distinct users currently in the room,
// deduplicated by user ID even when a user holds multiple sessions.
// The result is sorted by username for stable output.
func (p *Presence) ActiveUsers(workflowID string) []model.ActiveUser {
	seen := make(map[string]model.ActiveUser)
	for _, sessionID := range p.rooms.Members(workflowID) {
		s, ok := p.registry.Get(sessionID)
		if !ok {
			continue
		}
		seen[s.UserID] = model.ActiveUser{
			UserID:      s.UserID,
			Username:    s.Username,
			DisplayName: s.DisplayName,
		}
	}

	users := make([]model.ActiveUser, 0, len(seen))
	for _, u := range seen {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// UserSessionCount returns how many of the user's sessions are currently
// in the room. Presence transitions (user-joined on 0->1, user-left on
// 1->0) are decided from this count.
func (p *Presence) UserSessionCount(workflowID, userID string) int {
	count := 0
	for _, sessionID := range p.rooms.Members(workflowID) {
		if s, ok := p.registry.Get(sessionID); ok && s.UserID == userID {
			count++
		}
	}
	return count
}
