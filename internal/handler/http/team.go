package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TeamHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Archive(w http.ResponseWriter, r *http.Request)

	AddMember(w http.ResponseWriter, r *http.Request)
	UpdateMemberRole(w http.ResponseWriter, r *http.Request)
	RemoveMember(w http.ResponseWriter, r *http.Request)
	ListMembers(w http.ResponseWriter, r *http.Request)

	CreateTask(w http.ResponseWriter, r *http.Request)
	ListTasks(w http.ResponseWriter, r *http.Request)
	GetTask(w http.ResponseWriter, r *http.Request)
	UpdateTask(w http.ResponseWriter, r *http.Request)
	UpdateTaskStatus(w http.ResponseWriter, r *http.Request)
	DeleteTask(w http.ResponseWriter, r *http.Request)

	PostMessage(w http.ResponseWriter, r *http.Request)
	ListMessages(w http.ResponseWriter, r *http.Request)

	ScheduleMeeting(w http.ResponseWriter, r *http.Request)
	ListMeetings(w http.ResponseWriter, r *http.Request)
	CancelMeeting(w http.ResponseWriter, r *http.Request)

	UploadDocument(w http.ResponseWriter, r *http.Request)
	ListDocuments(w http.ResponseWriter, r *http.Request)
	DeleteDocument(w http.ResponseWriter, r *http.Request)
}

type TeamHandlerImpl struct {
	teamService team.TeamService
}

func NewTeamHandler(teamService team.TeamService) TeamHandler {
	return &TeamHandlerImpl{teamService: teamService}
}

func (h *TeamHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req team.CreateTeamRequest
	if !decodeJSON(w, r, "CreateTeam", &req) {
		return
	}

	created, err := h.teamService.Create(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Team created successfully", created)
}

func (h *TeamHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	result, err := h.teamService.ListMine(r.Context(), principal, team.TeamFilter{
		IncludeArchived: getBoolQueryParam(r, "includeArchived", false),
		Page:            getIntQueryParam(r, "page", 1),
		Limit:           getIntQueryParam(r, "limit", 20),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Teams, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *TeamHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	result, err := h.teamService.Get(r.Context(), principal, chi.URLParam(r, "teamId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *TeamHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req team.UpdateTeamRequest
	if !decodeJSON(w, r, "UpdateTeam", &req) {
		return
	}
	req.ID = chi.URLParam(r, "teamId")

	updated, err := h.teamService.Update(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team updated successfully", updated)
}

func (h *TeamHandlerImpl) Archive(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	archived, err := h.teamService.Archive(r.Context(), principal, chi.URLParam(r, "teamId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team archived", archived)
}

// Members

func (h *TeamHandlerImpl) AddMember(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req team.AddMemberRequest
	if !decodeJSON(w, r, "AddMember", &req) {
		return
	}
	req.TeamID = chi.URLParam(r, "teamId")

	member, err := h.teamService.AddMember(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Member added successfully", member)
}

func (h *TeamHandlerImpl) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req team.UpdateMemberRoleRequest
	if !decodeJSON(w, r, "UpdateMemberRole", &req) {
		return
	}
	req.TeamID = chi.URLParam(r, "teamId")
	req.UserID = chi.URLParam(r, "userId")

	member, err := h.teamService.UpdateMemberRole(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Member role updated", member)
}

func (h *TeamHandlerImpl) RemoveMember(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	if err := h.teamService.RemoveMember(r.Context(), principal, chi.URLParam(r, "teamId"), chi.URLParam(r, "userId")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Member removed", nil)
}

func (h *TeamHandlerImpl) ListMembers(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	members, err := h.teamService.ListMembers(r.Context(), principal, chi.URLParam(r, "teamId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, members)
}

// Tasks

func (h *TeamHandlerImpl) CreateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req team.CreateTaskRequest
	if !decodeJSON(w, r, "CreateTask", &req) {
		return
	}
	req.TeamID = chi.URLParam(r, "teamId")

	task, err := h.teamService.CreateTask(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Task created successfully", task)
}

func (h *TeamHandlerImpl) ListTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	tasks, err := h.teamService.ListTasks(r.Context(), principal, team.TaskFilter{
		TeamID:     chi.URLParam(r, "teamId"),
		Status:     getStringQueryParam(r, "status"),
		AssigneeID: getStringQueryParam(r, "assigneeId"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, tasks)
}

func (h *TeamHandlerImpl) GetTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	task, err := h.teamService.GetTask(r.Context(), principal, chi.URLParam(r, "teamId"), chi.URLParam(r, "taskId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, task)
}

func (h *TeamHandlerImpl) UpdateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req team.UpdateTaskRequest
	if !decodeJSON(w, r, "UpdateTask", &req) {
		return
	}
	req.TeamID = chi.URLParam(r, "teamId")
	req.ID = chi.URLParam(r, "taskId")

	task, err := h.teamService.UpdateTask(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task updated successfully", task)
}

func (h *TeamHandlerImpl) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req team.UpdateTaskStatusRequest
	if !decodeJSON(w, r, "UpdateTaskStatus", &req) {
		return
	}
	req.TeamID = chi.URLParam(r, "teamId")
	req.ID = chi.URLParam(r, "taskId")

	task, err := h.teamService.UpdateTaskStatus(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task status updated", task)
}

func (h *TeamHandlerImpl) DeleteTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	if err := h.teamService.DeleteTask(r.Context(), principal, chi.URLParam(r, "teamId"), chi.URLParam(r, "taskId")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task deleted", nil)
}

// Chat

func (h *TeamHandlerImpl) PostMessage(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req team.PostMessageRequest
	if !decodeJSON(w, r, "PostMessage", &req) {
		return
	}
	req.TeamID = chi.URLParam(r, "teamId")

	msg, err := h.teamService.PostMessage(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Message posted", msg)
}

func (h *TeamHandlerImpl) ListMessages(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	result, err := h.teamService.ListMessages(r.Context(), principal, chi.URLParam(r, "teamId"),
		getIntQueryParam(r, "page", 1), getIntQueryParam(r, "limit", 50))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Messages, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// Meetings

func (h *TeamHandlerImpl) ScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req team.ScheduleMeetingRequest
	if !decodeJSON(w, r, "ScheduleMeeting", &req) {
		return
	}
	req.TeamID = chi.URLParam(r, "teamId")

	meeting, err := h.teamService.ScheduleMeeting(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Meeting scheduled", meeting)
}

func (h *TeamHandlerImpl) ListMeetings(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	meetings, err := h.teamService.ListMeetings(r.Context(), principal, chi.URLParam(r, "teamId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, meetings)
}

func (h *TeamHandlerImpl) CancelMeeting(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	meeting, err := h.teamService.CancelMeeting(r.Context(), principal, chi.URLParam(r, "teamId"), chi.URLParam(r, "meetingId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Meeting cancelled", meeting)
}

// Documents

func (h *TeamHandlerImpl) UploadDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, team.MaxDocumentSize+(1<<20))
	if err := r.ParseMultipartForm(team.MaxDocumentSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.HandleError(w, team.ErrDocumentTooLarge)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Document file is required", nil)
			return
		}
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	doc, err := h.teamService.UploadDocument(r.Context(), principal, team.UploadDocumentRequest{
		TeamID:      chi.URLParam(r, "teamId"),
		Title:       r.FormValue("title"),
		File:        file,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Document uploaded", doc)
}

func (h *TeamHandlerImpl) ListDocuments(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	docs, err := h.teamService.ListDocuments(r.Context(), principal, chi.URLParam(r, "teamId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, docs)
}

func (h *TeamHandlerImpl) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	if err := h.teamService.DeleteDocument(r.Context(), principal, chi.URLParam(r, "teamId"), chi.URLParam(r, "documentId")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Document deleted", nil)
}
