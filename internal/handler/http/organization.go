package http

import (
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type OrganizationHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type OrganizationHandlerImpl struct {
	organizationService organization.OrganizationService
}

func NewOrganizationHandler(organizationService organization.OrganizationService) OrganizationHandler {
	return &OrganizationHandlerImpl{organizationService: organizationService}
}

func (h *OrganizationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req organization.CreateOrganizationRequest
	if !decodeJSON(w, r, "CreateOrganization", &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.organizationService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Organization created successfully", created)
}

func (h *OrganizationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.organizationService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, orgs)
}

func (h *OrganizationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	org, err := h.organizationService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, org)
}

func (h *OrganizationHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req organization.UpdateOrganizationRequest
	if !decodeJSON(w, r, "UpdateOrganization", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.organizationService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Organization updated successfully", updated)
}
