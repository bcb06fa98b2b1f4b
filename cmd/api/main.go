package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hrm-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/facematch"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/push"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hrm-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hrm-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hrm-backend-go/internal/service/auth"
	calendarService "github.com/cmlabs-hris/hrm-backend-go/internal/service/calendar"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/file"
	leaveService "github.com/cmlabs-hris/hrm-backend-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hrm-backend-go/internal/service/notification"
	organizationService "github.com/cmlabs-hris/hrm-backend-go/internal/service/organization"
	overtimeService "github.com/cmlabs-hris/hrm-backend-go/internal/service/overtime"
	salaryService "github.com/cmlabs-hris/hrm-backend-go/internal/service/salary"
	teamService "github.com/cmlabs-hris/hrm-backend-go/internal/service/team"
	userService "github.com/cmlabs-hris/hrm-backend-go/internal/service/user"
	"github.com/cmlabs-hris/hrm-backend-go/migrations"
	"github.com/go-chi/httplog/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hrm-cmlabs"),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			return err
		}
		slog.Info("Database migrations applied")
	}

	fileStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if closer, ok := fileStorage.(io.Closer); ok {
		defer closer.Close()
	}

	var pushSender push.Sender = push.NoopSender{}
	if cfg.Firebase.Enabled {
		fcm, err := push.NewFCMSender(ctx, cfg.Firebase)
		if err != nil {
			return fmt.Errorf("initialize firebase: %w", err)
		}
		pushSender = fcm
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("initialize email service: %w", err)
	}

	loc := cfg.Location()
	transactor := postgresql.NewTransactor(db)

	userRepo := postgresql.NewUserRepository(db)
	organizationRepo := postgresql.NewOrganizationRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leavePolicyRepo := postgresql.NewLeavePolicyRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	salaryRepo := postgresql.NewDepartmentSalaryRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	fcmTokenRepo := postgresql.NewFCMTokenRepository(db)
	eventRepo := postgresql.NewEventRepository(db)
	teamRepos := teamService.Repositories{
		Teams:     postgresql.NewTeamRepository(db),
		Members:   postgresql.NewMemberRepository(db),
		Tasks:     postgresql.NewTaskRepository(db),
		Chats:     postgresql.NewChatRepository(db),
		Meetings:  postgresql.NewMeetingRepository(db),
		Documents: postgresql.NewDocumentRepository(db),
	}

	JWTService := jwt.NewJWTService(cfg.JWT)
	googleService := oauth.NewGoogleService(cfg.OAuth2Google, cfg.JWT.Secret)
	fileService := file.NewFileService(fileStorage, cfg.Storage.SignedURLExpiry)

	notifications := notificationService.NewNotificationService(
		notificationRepo,
		fcmTokenRepo,
		userRepo,
		pushSender,
		sse.NewHub(16),
		notificationService.Config{
			WorkerCount: cfg.Notification.WorkerCount,
			QueueSize:   cfg.Notification.QueueSize,
			DueBatch:    cfg.Notification.DueBatch,
		},
	)
	defer notifications.Stop()

	authSvc := serviceAuth.NewAuthService(userRepo, JWTService, emailService)
	userSvc := userService.NewUserService(userRepo, organizationRepo, fileService)
	organizationSvc := organizationService.NewOrganizationService(organizationRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, userRepo, fileService, facematch.NewClient(cfg.FaceMatch), loc)
	leaveSvc := leaveService.NewLeaveService(leaveRequestRepo, leavePolicyRepo, userRepo, notifications, loc)
	overtimeSvc := overtimeService.NewOvertimeService(overtimeRepo, userRepo, notifications)
	salarySvc := salaryService.NewSalaryService(salaryRepo, departmentRepo, userRepo, organizationRepo, transactor, cfg.Salary.FallbackHourlyRate)
	teamSvc := teamService.NewTeamService(teamRepos, userRepo, fileService, notifications, transactor)
	calendarSvc := calendarService.NewCalendarService(eventRepo, userRepo, notifications)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)

	scheduler := cron.NewScheduler(ctx)
	cron.NewNotificationJobs(notifications, JWTService, cfg.Notification.SweepEvery, cfg.Notification.ExpireEvery).RegisterJobs(scheduler)
	cron.NewAttendanceJobs(attendanceRepo, notifications, loc).RegisterJobs(scheduler)
	scheduler.AddJob("cleanup_rate_limiter", 10*time.Minute, func(ctx context.Context) error {
		if removed := rateLimiter.Cleanup(); removed > 0 {
			slog.Debug("Cron: dropped idle rate limiter entries", "count", removed)
		}
		return nil
	})

	var uploadsDir string
	if cfg.Storage.Type == "local" {
		uploadsDir = cfg.Storage.BasePath
	}

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:      logger,
		Env:         cfg.App.Env,
		CORSOrigins: cfg.App.CORSOrigins,
		StartedAt:   time.Now(),
		JWTService:  JWTService,
		Principals:  authSvc,
		RateLimiter: rateLimiter,
		UploadsDir:  uploadsDir,
	}, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authSvc, googleService, cfg.App.FrontendURL, cfg.JWT.CookieSecure),
		User:         appHTTP.NewUserHandler(userSvc),
		Organization: appHTTP.NewOrganizationHandler(organizationSvc),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:        appHTTP.NewLeaveHandler(leaveSvc),
		Overtime:     appHTTP.NewOvertimeHandler(overtimeSvc),
		Salary:       appHTTP.NewSalaryHandler(salarySvc),
		Notification: appHTTP.NewNotificationHandler(notifications, JWTService),
		Team:         appHTTP.NewTeamHandler(teamSvc),
		Calendar:     appHTTP.NewCalendarHandler(calendarSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
