package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/attachment"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/middleware"
	"github.com/HanjuJo/nexo-v1/internal/service"

	"github.com/gin-gonic/gin"
)

type InstallationsHandler struct {
	svc     service.InstallationService
	maxBody int64
}

// NewInstallationsHandler caps completion requests at maxBody bytes.
func NewInstallationsHandler(svc service.InstallationService, maxBody int64) *InstallationsHandler {
	return &InstallationsHandler{svc: svc, maxBody: maxBody}
}

// Create godoc
// @Summary      Schedule an installation or service visit
// @Tags         installations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CreateInstallationRequest true "Installation"
// @Success      201  {object} dto.InstallationResponse
// @Failure      403  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/installations [post]
func (h *InstallationsHandler) Create(c *gin.Context) {
	var req dto.CreateInstallationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List installations
// @Description  Technicians see their own assignments, administrators see all.
// @Tags         installations
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "pending | in_progress | completed | cancelled"
// @Param        client_id query string false "Client UUID"
// @Param        skip      query int    false "Offset"
// @Param        limit     query int    false "Page size"
// @Success      200 {object} dto.ListResponse[dto.InstallationResponse]
// @Router       /v1/installations [get]
func (h *InstallationsHandler) List(c *gin.Context) {
	var filter dto.InstallationFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.GetIdentity(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get an installation
// @Tags         installations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "Installation UUID"
// @Success      200 {object} dto.InstallationResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/installations/{id} [get]
func (h *InstallationsHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update an installation
// @Description  Cannot set status completed; use the completion endpoint. Only administrators may reassign the technician.
// @Tags         installations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                        true "Installation UUID"
// @Param        body body     dto.UpdateInstallationRequest true "Changes"
// @Success      200  {object} dto.InstallationResponse
// @Router       /v1/installations/{id} [put]
func (h *InstallationsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateInstallationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary      Complete an installation
// @Description  Multipart form. result_text is required; attachment1 and attachment2 are optional image or PDF files.
// @Tags         installations
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id          path     string true  "Installation UUID"
// @Param        result_text formData string true  "Work result"
// @Param        attachment1 formData file   false "First attachment"
// @Param        attachment2 formData file   false "Second attachment"
// @Success      200 {object} dto.InstallationResponse
// @Failure      403 {object} apierror.APIError
// @Failure      422 {object} apierror.APIError
// @Router       /v1/installations/{id}/complete [put]
func (h *InstallationsHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if h.maxBody > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}

	var uploads []service.Upload
	for slot := 1; slot <= attachment.Slots; slot++ {
		fh, err := c.FormFile(fmt.Sprintf("attachment%d", slot))
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			respondError(c, uploadError(err))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, apierror.Internal("open upload", err))
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		uploads = append(uploads, service.Upload{Slot: slot, Body: f})
	}

	resp, err := h.svc.Complete(c.Request.Context(), middleware.GetIdentity(c), id, c.PostForm("result_text"), uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierror.Validation("request body too large", map[string]string{"body": "max_size"})
	}
	return apierror.Validation("invalid multipart form: "+err.Error(), map[string]string{"body": "multipart"})
}

// Delete godoc
// @Summary      Delete an installation and its attachments
// @Tags         installations
// @Security     BearerAuth
// @Param        id path string true "Installation UUID"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Router       /v1/installations/{id} [delete]
func (h *InstallationsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClientHistory godoc
// @Summary      List the installations of one client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "Client UUID"
// @Param        skip  query int    false "Offset"
// @Param        limit query int    false "Page size"
// @Success      200 {object} dto.ListResponse[dto.InstallationResponse]
// @Router       /v1/clients/{id}/installations [get]
func (h *InstallationsHandler) ClientHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p dto.Pagination
	if !bindQuery(c, &p) {
		return
	}
	resp, err := h.svc.ClientHistory(c.Request.Context(), middleware.GetIdentity(c), id, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
