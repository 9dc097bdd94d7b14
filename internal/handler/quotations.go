package handler

import (
	"net/http"

	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/middleware"
	"github.com/HanjuJo/nexo-v1/internal/service"

	"github.com/gin-gonic/gin"
)

type QuotationsHandler struct{ svc service.QuotationService }

func NewQuotationsHandler(svc service.QuotationService) *QuotationsHandler {
	return &QuotationsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a quotation
// @Description  The caller becomes the salesperson. Line totals and the document total are computed from the submitted unit prices.
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CreateQuotationRequest true "Quotation"
// @Success      201  {object} dto.QuotationResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/quotations [post]
func (h *QuotationsHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest
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
// @Summary      List quotations
// @Description  Sales staff see their own quotations, administrators see all.
// @Tags         quotations
// @Produce      json
// @Security     BearerAuth
// @Param        client_name query string false "Client name contains"
// @Param        status      query string false "draft | submitted | approved | rejected | expired"
// @Param        skip        query int    false "Offset (default 0)"
// @Param        limit       query int    false "Page size (default 100)"
// @Success      200 {object} dto.ListResponse[dto.QuotationResponse]
// @Router       /v1/quotations [get]
func (h *QuotationsHandler) List(c *gin.Context) {
	var filter dto.DocumentFilter
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
// @Summary      Get a quotation with its line items
// @Tags         quotations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "Quotation UUID"
// @Success      200 {object} dto.QuotationResponse
// @Failure      403 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/quotations/{id} [get]
func (h *QuotationsHandler) Get(c *gin.Context) {
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
// @Summary      Update a quotation
// @Description  Omitted fields keep their value. When items is present it replaces every line item.
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                     true "Quotation UUID"
// @Param        body body     dto.UpdateQuotationRequest true "Changes"
// @Success      200  {object} dto.QuotationResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/quotations/{id} [put]
func (h *QuotationsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateQuotationRequest
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

// Delete godoc
// @Summary      Delete a quotation and its line items
// @Tags         quotations
// @Security     BearerAuth
// @Param        id path string true "Quotation UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/quotations/{id} [delete]
func (h *QuotationsHandler) Delete(c *gin.Context) {
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

// PDF godoc
// @Summary      Download a quotation as PDF
// @Tags         quotations
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path string true "Quotation UUID"
// @Success      200 {file} file
// @Router       /v1/quotations/{id}/pdf [get]
func (h *QuotationsHandler) PDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	body, name, err := h.svc.RenderPDF(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendPDF(c, body, name)
}
