package handler

import (
	"net/http"

	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/middleware"
	"github.com/HanjuJo/nexo-v1/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountsHandler struct{ svc service.AccountService }

func NewAccountsHandler(svc service.AccountService) *AccountsHandler {
	return &AccountsHandler{svc: svc}
}

// Create godoc
// @Summary      Create an account
// @Description  Administrators create employee accounts; only super administrators create administrators.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CreateAccountRequest true "Account"
// @Success      201  {object} dto.AccountResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/accounts [post]
func (h *AccountsHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
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

// Me godoc
// @Summary      The caller's own account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.AccountResponse
// @Router       /v1/accounts/me [get]
func (h *AccountsHandler) Me(c *gin.Context) {
	resp, err := h.svc.Me(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AccountsHandler) List(c *gin.Context) {
	var filter dto.AccountFilter
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

func (h *AccountsHandler) Get(c *gin.Context) {
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

func (h *AccountsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
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
// @Summary      Delete an account
// @Description  Refused for the caller's own account and for accounts that still own documents.
// @Tags         accounts
// @Security     BearerAuth
// @Param        id path string true "Account UUID"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/accounts/{id} [delete]
func (h *AccountsHandler) Delete(c *gin.Context) {
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
