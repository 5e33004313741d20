package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	RoleAdmin = "ADMIN"
	RoleCoach = "COACH"
	RoleStaff = "STAFF"
)

const actorKey = "actor"

// Actor is the authenticated staff member behind a request. CoachID is set
// only for coaches.
type Actor struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	CoachID  int    `json:"coach_id,omitempty"`
}

func (a Actor) IsAdmin() bool {
	return strings.EqualFold(a.Role, RoleAdmin)
}

func (a Actor) IsCoach() bool {
	return strings.EqualFold(a.Role, RoleCoach)
}

// CanManageCoach reports whether the actor may change coachID's availability:
// admins may change anyone's, coaches only their own.
func (a Actor) CanManageCoach(coachID int) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsCoach() && a.CoachID == coachID
}

func ActorFrom(c *gin.Context) (Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

func setActor(c *gin.Context, actor Actor) {
	c.Set(actorKey, actor)
}
