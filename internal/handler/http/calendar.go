package http

import (
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CalendarHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type CalendarHandlerImpl struct {
	calendarService calendar.CalendarService
}

func NewCalendarHandler(calendarService calendar.CalendarService) CalendarHandler {
	return &CalendarHandlerImpl{calendarService: calendarService}
}

func (h *CalendarHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req calendar.CreateEventRequest
	if !decodeJSON(w, r, "CreateEvent", &req) {
		return
	}

	event, err := h.calendarService.Create(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Event created successfully", event)
}

func (h *CalendarHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	events, err := h.calendarService.List(r.Context(), principal, calendar.EventFilter{
		From: getStringQueryParam(r, "from"),
		To:   getStringQueryParam(r, "to"),
		Type: getStringQueryParam(r, "type"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, events)
}

func (h *CalendarHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	event, err := h.calendarService.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, event)
}

func (h *CalendarHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req calendar.UpdateEventRequest
	if !decodeJSON(w, r, "UpdateEvent", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	event, err := h.calendarService.Update(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Event updated successfully", event)
}

func (h *CalendarHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	if err := h.calendarService.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Event deleted", nil)
}
