package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         AuthHandler
	User         UserHandler
	Organization OrganizationHandler
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Overtime     OvertimeHandler
	Salary       SalaryHandler
	Notification NotificationHandler
	Team         TeamHandler
	Calendar     CalendarHandler
}

type RouterConfig struct {
	Logger      *slog.Logger
	Env         string
	CORSOrigins []string
	StartedAt   time.Time
	JWTService  jwt.Service
	Principals  middleware.PrincipalResolver
	RateLimiter *middleware.RateLimiter

	// UploadsDir is served under /uploads when blobs live on local disk.
	UploadsDir string
}

type healthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Environment string `json:"environment"`
}

func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(metrics.Middleware)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())
	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			response.Success(w, healthResponse{
				Status:      "ok",
				Uptime:      time.Since(cfg.StartedAt).Round(time.Second).String(),
				Environment: cfg.Env,
			})
		})

		authenticated := func(r chi.Router) {
			r.Use(middleware.Verifier(cfg.JWTService))
			r.Use(middleware.AuthRequired(cfg.JWTService, cfg.Principals))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.RateLimiter != nil {
					r.Use(cfg.RateLimiter.Middleware)
				}
				r.Post("/login", h.Auth.Login)
				r.Post("/forgot-password", h.Auth.ForgotPassword)
				r.Post("/reset-password", h.Auth.ResetPassword)
				r.Get("/oauth/google", h.Auth.LoginWithGoogle)
				r.Get("/oauth/google/callback", h.Auth.OAuthCallbackGoogle)
			})

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Post("/logout", h.Auth.Logout)
				r.Get("/me", h.Auth.Me)
				r.Put("/password", h.Auth.ChangePassword)
			})
		})

		// SSE authenticates with a short-lived query token instead of the access token
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/today-summary", h.Attendance.TodaySummary)
				r.Get("/summary/week", h.Attendance.WeekSummary)
				r.Get("/summary/month", h.Attendance.MonthSummary)
				r.Get("/history", h.Attendance.History)
				r.Get("/monthly-details", h.Attendance.MonthlyDetails)
				r.With(middleware.RequireApprover).Get("/admin", h.Attendance.List)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Post("/submit", h.Leave.Submit)
				r.Get("/my", h.Leave.ListMine)
				r.Get("/balance", h.Leave.Balance)
				r.Get("/policies", h.Leave.ListPolicies)

				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequireApprover)
					r.Get("/", h.Leave.List)
					r.Put("/{requestId}/approve", h.Leave.Approve)
					r.Put("/{requestId}/reject", h.Leave.Reject)
					r.With(middleware.RequirePeopleAdmin).Put("/policies/{type}", h.Leave.UpsertPolicy)
				})

				r.Get("/{requestId}", h.Leave.Get)
				r.Put("/{requestId}", h.Leave.Update)
				r.Put("/{requestId}/cancel", h.Leave.Cancel)
			})

			r.Route("/overtime", func(r chi.Router) {
				r.Post("/submit", h.Overtime.Submit)
				r.Get("/my", h.Overtime.ListMine)
				r.Get("/summary", h.Overtime.Summary)

				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequireApprover)
					r.Get("/", h.Overtime.List)
					r.Put("/{requestId}/approve", h.Overtime.Approve)
					r.Put("/{requestId}/reject", h.Overtime.Reject)
				})

				r.Get("/{requestId}", h.Overtime.Get)
				r.Put("/{requestId}", h.Overtime.Update)
				r.Put("/{requestId}/cancel", h.Overtime.Cancel)
			})

			r.Route("/salary", func(r chi.Router) {
				r.Get("/resolve", h.Salary.Resolve)
				r.Get("/employees/{employeeId}", h.Salary.ListByEmployee)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePeopleAdmin)
					r.Post("/", h.Salary.Create)
					r.Put("/{id}", h.Salary.Update)
					r.Put("/{id}/default", h.Salary.SetDefault)
					r.Delete("/{id}", h.Salary.Deactivate)
				})
			})

			r.Route("/departments", func(r chi.Router) {
				r.Use(middleware.RequirePeopleAdmin)
				r.Get("/", h.Salary.ListDepartments)
				r.Post("/", h.Salary.CreateDepartment)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Patch("/read-all", h.Notification.MarkAllAsRead)
				r.Patch("/{id}/read", h.Notification.MarkAsRead)
				r.Delete("/{id}", h.Notification.Delete)
				r.Post("/fcm-token", h.Notification.RegisterToken)
				r.Delete("/fcm-token", h.Notification.UnregisterToken)
				r.Post("/sse-token", h.Notification.GetSSEToken)
				r.With(middleware.RequirePeopleAdmin).Post("/", h.Notification.Create)
			})

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", h.Team.Create)
				r.Get("/", h.Team.ListMine)

				r.Route("/{teamId}", func(r chi.Router) {
					r.Get("/", h.Team.Get)
					r.Put("/", h.Team.Update)
					r.Put("/archive", h.Team.Archive)

					r.Get("/members", h.Team.ListMembers)
					r.Post("/members", h.Team.AddMember)
					r.Put("/members/{userId}", h.Team.UpdateMemberRole)
					r.Delete("/members/{userId}", h.Team.RemoveMember)

					r.Get("/tasks", h.Team.ListTasks)
					r.Post("/tasks", h.Team.CreateTask)
					r.Get("/tasks/{taskId}", h.Team.GetTask)
					r.Put("/tasks/{taskId}", h.Team.UpdateTask)
					r.Patch("/tasks/{taskId}/status", h.Team.UpdateTaskStatus)
					r.Delete("/tasks/{taskId}", h.Team.DeleteTask)

					r.Get("/chats", h.Team.ListMessages)
					r.Post("/chats", h.Team.PostMessage)

					r.Get("/meetings", h.Team.ListMeetings)
					r.Post("/meetings", h.Team.ScheduleMeeting)
					r.Put("/meetings/{meetingId}/cancel", h.Team.CancelMeeting)

					r.Get("/documents", h.Team.ListDocuments)
					r.Post("/documents", h.Team.UploadDocument)
					r.Delete("/documents/{documentId}", h.Team.DeleteDocument)
				})
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Post("/", h.Calendar.Create)
				r.Get("/", h.Calendar.List)
				r.Get("/{id}", h.Calendar.Get)
				r.Put("/{id}", h.Calendar.Update)
				r.Delete("/{id}", h.Calendar.Delete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Put("/me", h.User.UpdateProfile)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePeopleAdmin)
					r.Post("/", h.User.Create)
					r.Get("/", h.User.List)
					r.Get("/{id}", h.User.Get)
					r.Put("/{id}", h.User.Update)
					r.Put("/{id}/role", h.User.SetRole)
					r.Put("/{id}/organization", h.User.SetOrganization)
					r.Put("/{id}/disable", h.User.Disable)
					r.Put("/{id}/enable", h.User.Enable)
					r.Delete("/{id}", h.User.Delete)
					r.Post("/{id}/face-image", h.User.UploadFaceImage)
				})
			})

			r.Route("/organizations", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Organization.Create)
				r.Get("/", h.Organization.List)
				r.Get("/{id}", h.Organization.Get)
				r.Put("/{id}", h.Organization.Update)
			})
		})
	})
	return r
}
