package resolutions

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resolution-backend/internal/assembly"
	"resolution-backend/internal/entities"
	"resolution-backend/internal/sequence"
	"resolution-backend/internal/shared/server/middleware"
	"resolution-backend/internal/shared/server/respond"
	"resolution-backend/internal/templates"
)

const maxBodySize = 1 << 20 // 1MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches template, document, entity and register routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.listTemplates)
	rg.GET("/templates/:id", h.getTemplate)
	rg.POST("/templates/:id/validate", h.validate)
	rg.POST("/templates/:id/preview", h.preview)

	rg.POST("/documents", h.generate)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/download", h.download)

	rg.GET("/entities", h.listEntities)
	rg.GET("/entities/:id", h.getEntity)

	rg.GET("/register", h.register)
}

func (h *Handler) listTemplates(c *gin.Context) {
	tpls := h.Svc.ListTemplates()
	resp := make([]TemplateSummary, 0, len(tpls))
	for _, tpl := range tpls {
		resp = append(resp, toSummary(tpl))
	}
	respond.OK(c, resp)
}

func (h *Handler) getTemplate(c *gin.Context) {
	tpl, err := h.Svc.Template(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, tpl)
}

func (h *Handler) validate(c *gin.Context) {
	c.Set(middleware.TemplateIDKey, c.Param("id"))
	req, ok := bindAnswers(c)
	if !ok {
		return
	}
	msgs, err := h.Svc.Validate(c.Request.Context(), c.Param("id"), req.Values)
	if err != nil {
		h.fail(c, err)
		return
	}
	if msgs == nil {
		msgs = []string{}
	}
	respond.OK(c, ValidateResponse{Valid: len(msgs) == 0, Errors: msgs})
}

func (h *Handler) preview(c *gin.Context) {
	c.Set(middleware.TemplateIDKey, c.Param("id"))
	req, ok := bindAnswers(c)
	if !ok {
		return
	}
	doc, err := h.Svc.Preview(c.Request.Context(), c.Param("id"), req.Values)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, PreviewResponse{
		ResolutionID: doc.ResolutionID,
		Title:        doc.Title,
		Body:         doc.Body,
		FileName:     doc.FileName,
	})
}

func (h *Handler) generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.TemplateID = strings.TrimSpace(req.TemplateID)
	if req.TemplateID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "templateId is required", nil)
		return
	}
	c.Set(middleware.TemplateIDKey, req.TemplateID)

	out, err := h.Svc.Generate(c.Request.Context(), req.TemplateID, req.Values)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, out.Record.ID)
	c.Set(middleware.ResolutionIDKey, out.Record.ResolutionID)

	respond.Created(c, c.FullPath()+"/"+out.Record.ID, GenerateResponse{
		DocumentResponse: toResponse(out.Record),
		Body:             out.Document.Body,
	})
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	recs, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := make([]DocumentResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, toResponse(rec))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	c.Set(middleware.DocumentIDKey, c.Param("id"))
	rec, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.ResolutionIDKey, rec.ResolutionID)
	respond.OK(c, toResponse(rec))
}

func (h *Handler) download(c *gin.Context) {
	c.Set(middleware.DocumentIDKey, c.Param("id"))
	rec, rc, err := h.Svc.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()
	c.Set(middleware.ResolutionIDKey, rec.ResolutionID)

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rec.FileName}))
	c.Header("Content-Type", rec.MimeType)
	if rec.SizeBytes > 0 {
		c.Header("Content-Length", strconv.FormatInt(rec.SizeBytes, 10))
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func (h *Handler) listEntities(c *gin.Context) {
	list, err := h.Svc.ListEntities(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *Handler) getEntity(c *gin.Context) {
	e, err := h.Svc.GetEntity(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, e)
}

func (h *Handler) register(c *gin.Context) {
	respond.OK(c, gin.H{"entries": h.Svc.Register()})
}

func bindAnswers(c *gin.Context) (AnswersRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	var req AnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return AnswersRequest{}, false
	}
	return req, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	if msgs, ok := assembly.AsValidation(err); ok {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "document failed validation", gin.H{"errors": msgs})
		return
	}
	switch {
	case errors.Is(err, templates.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
	case errors.Is(err, entities.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "entity not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, assembly.ErrComputeInput):
		respond.Error(c, http.StatusUnprocessableEntity, "compute_error", err.Error(), nil)
	case errors.Is(err, sequence.ErrPersistence):
		respond.Error(c, http.StatusServiceUnavailable, "register_unavailable", "resolution register could not be saved", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "request failed", nil)
	}
}
