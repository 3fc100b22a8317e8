package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/http/response"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type MemberHandler struct {
	log *logger.Logger
}

func NewMemberHandler(log *logger.Logger) *MemberHandler {
	return &MemberHandler{log: log.With("handler", "MemberHandler")}
}

type memberRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Team           string `json:"team"`
	Picture        string `json:"picture"`
	Position       string `json:"position"`
	PersonalEmail  string `json:"personal_email"`
	Phone          string `json:"phone"`
	City           string `json:"city"`
	Country        string `json:"country"`
	ZipCode        string `json:"zip_code"`
	Address        string `json:"address"`
	Apartment      string `json:"apartment"`
	AdditionalInfo string `json:"additional_info"`
	StartDate      string `json:"start_date"`
	BirthDate      string `json:"birth_date"`
	DNI            string `json:"dni"`
}

func (r memberRequest) input() domainagg.CreateMemberInput {
	return domainagg.CreateMemberInput(r)
}

type memberPatchRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	Team           *string `json:"team"`
	Picture        *string `json:"picture"`
	Position       *string `json:"position"`
	PersonalEmail  *string `json:"personal_email"`
	Phone          *string `json:"phone"`
	City           *string `json:"city"`
	Country        *string `json:"country"`
	ZipCode        *string `json:"zip_code"`
	Address        *string `json:"address"`
	Apartment      *string `json:"apartment"`
	AdditionalInfo *string `json:"additional_info"`
	StartDate      *string `json:"start_date"`
	BirthDate      *string `json:"birth_date"`
	DNI            *string `json:"dni"`
}

// POST /members
func (h *MemberHandler) Create(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	m, err := scope.MemberLifecycle.CreateMember(c.Request.Context(), req.input())
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"member": m})
}

// POST /members/bulkcreate
func (h *MemberHandler) BulkCreate(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	var req []memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := make([]domainagg.CreateMemberInput, 0, len(req))
	for _, r := range req {
		in = append(in, r.input())
	}
	members, err := scope.MemberLifecycle.BulkCreateMembers(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"members": members})
}

// GET /members
func (h *MemberHandler) List(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	members, err := scope.MemberLifecycle.ListMembers(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"members": members})
}

// GET /members/:id
func (h *MemberHandler) Get(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	id, ok := parseID(c, "invalid_member_id")
	if !ok {
		return
	}
	m, err := scope.MemberLifecycle.GetMember(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"member": m})
}

// PATCH /members/:id
// The embedded "products" list is not writable here.
func (h *MemberHandler) Update(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	id, ok := parseID(c, "invalid_member_id")
	if !ok {
		return
	}
	var req memberPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	m, err := scope.MemberLifecycle.UpdateMember(c.Request.Context(), id, domainagg.MemberPatch(req))
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"member": m})
}

// DELETE /members/:id
func (h *MemberHandler) SoftDelete(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	id, ok := parseID(c, "invalid_member_id")
	if !ok {
		return
	}
	res, err := scope.MemberLifecycle.SoftDeleteMember(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"member_id": res.MemberID, "detached": res.Detached})
}
