package http

import (
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SalaryHandler interface {
	CreateDepartment(w http.ResponseWriter, r *http.Request)
	ListDepartments(w http.ResponseWriter, r *http.Request)

	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)
	SetDefault(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
}

type SalaryHandlerImpl struct {
	salaryService salary.SalaryService
}

func NewSalaryHandler(salaryService salary.SalaryService) SalaryHandler {
	return &SalaryHandlerImpl{salaryService: salaryService}
}

func (h *SalaryHandlerImpl) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req salary.CreateDepartmentRequest
	if !decodeJSON(w, r, "CreateDepartment", &req) {
		return
	}

	created, err := h.salaryService.CreateDepartment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Department created successfully", created)
}

// ListDepartments lists the caller's organization unless organizationId is given.
func (h *SalaryHandlerImpl) ListDepartments(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	orgID := getStringQueryParam(r, "organizationId")
	if orgID == nil {
		orgID = principal.OrganizationID
	}
	if orgID == nil {
		response.BadRequest(w, "organizationId is required", nil)
		return
	}

	departments, err := h.salaryService.ListDepartments(r.Context(), *orgID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, departments)
}

func (h *SalaryHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req salary.CreateSalaryRequest
	if !decodeJSON(w, r, "CreateSalary", &req) {
		return
	}

	created, err := h.salaryService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Department salary created successfully", created)
}

func (h *SalaryHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req salary.UpdateSalaryRequest
	if !decodeJSON(w, r, "UpdateSalary", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := h.salaryService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Department salary updated successfully", updated)
}

// ListByEmployee is open to the employee themself and to people admins.
func (h *SalaryHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID != principal.UserID && !principal.IsPeopleAdmin() {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}

	records, err := h.salaryService.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, records)
}

func (h *SalaryHandlerImpl) Deactivate(w http.ResponseWriter, r *http.Request) {
	deactivated, err := h.salaryService.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Department salary deactivated", deactivated)
}

func (h *SalaryHandlerImpl) SetDefault(w http.ResponseWriter, r *http.Request) {
	updated, err := h.salaryService.SetDefault(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Default department salary set", updated)
}

// Resolve defaults employeeId to the caller. Resolving for someone else needs an approver role.
func (h *SalaryHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	employeeID := principal.UserID
	if requested := getStringQueryParam(r, "employeeId"); requested != nil {
		employeeID = *requested
	}
	if employeeID != principal.UserID && !principal.IsApprover() {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}

	resolution, err := h.salaryService.Resolve(r.Context(), employeeID, getStringQueryParam(r, "departmentId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resolution)
}
