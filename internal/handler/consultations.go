package handler

import (
	"net/http"

	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/middleware"
	"github.com/HanjuJo/nexo-v1/internal/service"

	"github.com/gin-gonic/gin"
)

type ConsultationsHandler struct{ svc service.ConsultationService }

func NewConsultationsHandler(svc service.ConsultationService) *ConsultationsHandler {
	return &ConsultationsHandler{svc: svc}
}

// Create godoc
// @Summary      Record a consultation
// @Tags         consultations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CreateConsultationRequest true "Consultation"
// @Success      201  {object} dto.ConsultationResponse
// @Router       /v1/consultations [post]
func (h *ConsultationsHandler) Create(c *gin.Context) {
	var req dto.CreateConsultationRequest
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
// @Summary      List consultations
// @Tags         consultations
// @Produce      json
// @Security     BearerAuth
// @Param        client_id query string false "Client UUID"
// @Success      200 {object} dto.ListResponse[dto.ConsultationResponse]
// @Router       /v1/consultations [get]
func (h *ConsultationsHandler) List(c *gin.Context) {
	var filter dto.ConsultationFilter
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

func (h *ConsultationsHandler) Get(c *gin.Context) {
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

func (h *ConsultationsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateConsultationRequest
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
// @Summary      Delete a consultation
// @Description  Quotations created from it are kept with their consultation reference cleared.
// @Tags         consultations
// @Security     BearerAuth
// @Param        id path string true "Consultation UUID"
// @Success      204
// @Router       /v1/consultations/{id} [delete]
func (h *ConsultationsHandler) Delete(c *gin.Context) {
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
