package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/http/response"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type TeamHandler struct {
	log *logger.Logger
}

func NewTeamHandler(log *logger.Logger) *TeamHandler {
	return &TeamHandler{log: log.With("handler", "TeamHandler")}
}

// POST /teams
func (h *TeamHandler) Create(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	team, err := scope.TeamLifecycle.CreateTeam(c.Request.Context(), domainagg.CreateTeamInput{Name: req.Name, Color: req.Color})
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"team": team})
}

// GET /teams
func (h *TeamHandler) List(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	teams, err := scope.TeamLifecycle.ListTeams(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"teams": teams})
}

// GET /teams/:id
func (h *TeamHandler) Get(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	id, ok := parseID(c, "invalid_team_id")
	if !ok {
		return
	}
	team, err := scope.TeamLifecycle.GetTeam(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"team": team})
}

// PATCH /teams/:id
func (h *TeamHandler) Update(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	id, ok := parseID(c, "invalid_team_id")
	if !ok {
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	team, err := scope.TeamLifecycle.UpdateTeam(c.Request.Context(), id, domainagg.TeamPatch{Name: req.Name, Color: req.Color})
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"team": team})
}

// PUT /teams/:id/members/:memberId
func (h *TeamHandler) AssignMember(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	teamID, ok := parseID(c, "invalid_team_id")
	if !ok {
		return
	}
	memberID, ok := parseParam(c, "memberId", "invalid_member_id")
	if !ok {
		return
	}
	m, err := scope.MemberLifecycle.AssignTeam(c.Request.Context(), memberID, teamID)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"member": m})
}

// PUT /teams/:id/change-member/:teamId
// Here :id names the member being moved.
func (h *TeamHandler) ChangeMemberTeam(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	memberID, ok := parseID(c, "invalid_member_id")
	if !ok {
		return
	}
	teamID, ok := parseParam(c, "teamId", "invalid_team_id")
	if !ok {
		return
	}
	m, err := scope.MemberLifecycle.AssignTeam(c.Request.Context(), memberID, teamID)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"member": m})
}

// PUT /teams/change-members/:id
func (h *TeamHandler) ChangeMembers(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	teamID, ok := parseID(c, "invalid_team_id")
	if !ok {
		return
	}
	var req struct {
		MemberIDs []uuid.UUID `json:"members_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	members, err := scope.MemberLifecycle.AssignTeamMany(c.Request.Context(), teamID, req.MemberIDs)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"members": members})
}

// PUT /teams/:id/unassign-member
// Here :id names the member leaving its team.
func (h *TeamHandler) UnassignMember(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	memberID, ok := parseID(c, "invalid_member_id")
	if !ok {
		return
	}
	m, err := scope.MemberLifecycle.UnassignTeam(c.Request.Context(), memberID)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"member": m})
}

// DELETE /teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	id, ok := parseID(c, "invalid_team_id")
	if !ok {
		return
	}
	if err := scope.TeamLifecycle.DeleteTeam(c.Request.Context(), id); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
