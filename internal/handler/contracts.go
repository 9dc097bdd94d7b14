package handler

import (
	"net/http"

	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/middleware"
	"github.com/HanjuJo/nexo-v1/internal/service"

	"github.com/gin-gonic/gin"
)

type ContractsHandler struct{ svc service.ContractService }

func NewContractsHandler(svc service.ContractService) *ContractsHandler {
	return &ContractsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a contract
// @Description  The caller becomes the salesperson. Line totals and the document total are computed from the submitted unit prices.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CreateContractRequest true "Contract"
// @Success      201  {object} dto.ContractResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/contracts [post]
func (h *ContractsHandler) Create(c *gin.Context) {
	var req dto.CreateContractRequest
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
// @Summary      List contracts
// @Description  Sales staff see their own contracts, administrators see all.
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        client_name query string false "Client name contains"
// @Param        status      query string false "draft | signed | in_progress | completed | cancelled"
// @Param        skip        query int    false "Offset (default 0)"
// @Param        limit       query int    false "Page size (default 100)"
// @Success      200 {object} dto.ListResponse[dto.ContractResponse]
// @Router       /v1/contracts [get]
func (h *ContractsHandler) List(c *gin.Context) {
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
// @Summary      Get a contract with its line items
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "Contract UUID"
// @Success      200 {object} dto.ContractResponse
// @Failure      403 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/contracts/{id} [get]
func (h *ContractsHandler) Get(c *gin.Context) {
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
// @Summary      Update a contract
// @Description  Omitted fields keep their value. When items is present it replaces every line item.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                     true "Contract UUID"
// @Param        body body     dto.UpdateContractRequest true "Changes"
// @Success      200  {object} dto.ContractResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/contracts/{id} [put]
func (h *ContractsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateContractRequest
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
// @Summary      Delete a contract and its line items
// @Description  Refused with 409 while installations reference the contract.
// @Tags         contracts
// @Security     BearerAuth
// @Param        id path string true "Contract UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/contracts/{id} [delete]
func (h *ContractsHandler) Delete(c *gin.Context) {
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
// @Summary      Download a contract as PDF
// @Tags         contracts
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path string true "Contract UUID"
// @Success      200 {file} file
// @Router       /v1/contracts/{id}/pdf [get]
func (h *ContractsHandler) PDF(c *gin.Context) {
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
