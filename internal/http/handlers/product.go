package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/http/response"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type ProductHandler struct {
	log *logger.Logger
}

func NewProductHandler(log *logger.Logger) *ProductHandler {
	return &ProductHandler{log: log.With("handler", "ProductHandler")}
}

type productRequest struct {
	Name            string                `json:"name"`
	Category        string                `json:"category"`
	Attributes      []inventory.Attribute `json:"attributes"`
	Status          string                `json:"status"`
	SerialNumber    string                `json:"serial_number"`
	AssignedEmail   string                `json:"assigned_email"`
	AcquisitionDate string                `json:"acquisition_date"`
	Location        string                `json:"location"`
}

func (r productRequest) input() domainagg.CreateAssetInput {
	return domainagg.CreateAssetInput{
		Name:            r.Name,
		Category:        r.Category,
		Attributes:      r.Attributes,
		Status:          r.Status,
		SerialNumber:    r.SerialNumber,
		AssignedEmail:   r.AssignedEmail,
		AcquisitionDate: r.AcquisitionDate,
		Location:        r.Location,
	}
}

type productPatchRequest struct {
	Name            *string                `json:"name"`
	Category        *string                `json:"category"`
	Attributes      *[]inventory.Attribute `json:"attributes"`
	Status          *string                `json:"status"`
	SerialNumber    *string                `json:"serial_number"`
	AssignedEmail   *string                `json:"assigned_email"`
	AcquisitionDate *string                `json:"acquisition_date"`
	Location        *string                `json:"location"`
}

func (r productPatchRequest) patch() domainagg.AssetPatch {
	return domainagg.AssetPatch{
		Name:            r.Name,
		Category:        r.Category,
		Attributes:      r.Attributes,
		Status:          r.Status,
		SerialNumber:    r.SerialNumber,
		AssignedEmail:   r.AssignedEmail,
		AcquisitionDate: r.AcquisitionDate,
		Location:        r.Location,
	}
}

type productResponse struct {
	Product  inventory.Asset `json:"product"`
	Location string          `json:"location"`
	MemberID *uuid.UUID      `json:"member_id,omitempty"`
}

func toProductResponse(res domainagg.AssetResult) productResponse {
	out := productResponse{Product: res.Asset, Location: res.Location.Kind.String()}
	if res.Location.Kind == inventory.LocationAssigned {
		id := res.Location.MemberID
		out.MemberID = &id
	}
	return out
}

// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := scope.Relocation.Create(c.Request.Context(), req.input())
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondCreated(c, toProductResponse(res))
}

// POST /products/bulkcreate
func (h *ProductHandler) BulkCreate(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	var req []productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := make([]domainagg.CreateAssetInput, 0, len(req))
	for _, r := range req {
		in = append(in, r.input())
	}
	res, err := scope.Relocation.CreateMany(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	out := make([]productResponse, 0, len(res))
	for _, r := range res {
		out = append(out, toProductResponse(r))
	}
	response.RespondCreated(c, gin.H{"products": out})
}

// GET /products/table
func (h *ProductHandler) TableGrouping(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	groups, err := scope.Catalog.TableGrouping(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, groups)
}

// GET /products/available
func (h *ProductHandler) ListAvailable(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	rows, err := scope.Catalog.ListAvailable(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"products": rows})
}

// GET /products/assigned
func (h *ProductHandler) ListAssigned(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	rows, err := scope.Catalog.GetAllProductsWithMembers(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"products": rows})
}

// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	id, ok := parseID(c, "invalid_product_id")
	if !ok {
		return
	}
	res, err := scope.Relocation.FindByID(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, toProductResponse(res))
}

// PATCH /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	h.patch(c, false)
}

// PATCH /products/reassign/:id
func (h *ProductHandler) Reassign(c *gin.Context) {
	h.patch(c, true)
}

func (h *ProductHandler) patch(c *gin.Context, reassign bool) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	id, ok := parseID(c, "invalid_product_id")
	if !ok {
		return
	}
	var req productPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var (
		res domainagg.AssetResult
		err error
	)
	if reassign {
		res, err = scope.Relocation.Reassign(c.Request.Context(), id, req.patch())
	} else {
		res, err = scope.Relocation.Update(c.Request.Context(), id, req.patch())
	}
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, toProductResponse(res))
}

// DELETE /products/:id
func (h *ProductHandler) SoftDelete(c *gin.Context) {
	scope, ok := requireScope(c, h.log)
	if !ok {
		return
	}
	id, ok := parseID(c, "invalid_product_id")
	if !ok {
		return
	}
	res, err := scope.Relocation.SoftDelete(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, toProductResponse(res))
}
