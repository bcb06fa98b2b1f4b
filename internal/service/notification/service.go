package notification

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/push"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

const (
	eventNotification = "notification"
	jobTimeout        = 30 * time.Second
)

// Config holds notification service configuration
type Config struct {
	WorkerCount int // default: 2
	QueueSize   int // default: 1000
	DueBatch    int // default: 100, scheduled notifications handled per sweep
}

// job is one unit of background work. A nil stored means req still has to be persisted.
type job struct {
	req    notification.NotifyRequest
	stored *notification.Notification
}

type service struct {
	repo   notification.NotificationRepository
	tokens notification.FCMTokenRepository
	users  user.UserRepository
	sender push.Sender
	hub    *sse.Hub
	config Config
	now    func() time.Time

	queue  chan job
	wg     sync.WaitGroup
	stopCh chan struct{}
	stop   sync.Once

	// mu orders queue sends before Stop; stopped is guarded by it.
	mu      sync.RWMutex
	stopped bool
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(
	repo notification.NotificationRepository,
	tokens notification.FCMTokenRepository,
	users user.UserRepository,
	sender push.Sender,
	hub *sse.Hub,
	cfg Config,
) notification.NotificationService {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.DueBatch <= 0 {
		cfg.DueBatch = 100
	}

	s := &service{
		repo:   repo,
		tokens: tokens,
		users:  users,
		sender: sender,
		hub:    hub,
		config: cfg,
		now:    time.Now,
		queue:  make(chan job, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return s
}

// worker processes the queue until Stop, then drains what is left.
func (s *service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case j := <-s.queue:
			s.run(id, j)
		case <-s.stopCh:
			for {
				select {
				case j := <-s.queue:
					s.run(id, j)
				default:
					return
				}
			}
		}
	}
}

func (s *service) run(worker int, j job) {
	metrics.NotificationQueueDepth.Set(float64(len(s.queue)))

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.process(ctx, j); err != nil {
		slog.Error("Notification job failed", "worker", worker, "type", j.req.Type, "title", j.req.Title, "error", err)
	}
}

func (s *service) process(ctx context.Context, j job) error {
	n := j.stored
	if n == nil {
		stored, err := s.store(ctx, j.req)
		if err != nil {
			return err
		}
		if stored == nil {
			return nil
		}
		n = stored
	}
	s.deliver(ctx, *n)
	return nil
}

// Notify implements notification.Notifier. Work is queued; when the queue is full or the
// service has stopped it runs inline, and failures are only logged.
func (s *service) Notify(ctx context.Context, req notification.NotifyRequest) {
	s.enqueue(ctx, job{req: req})
}

func (s *service) enqueue(ctx context.Context, j job) {
	if s.tryQueue(j) {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), jobTimeout)
	defer cancel()
	if err := s.process(ctx, j); err != nil {
		slog.Error("Notification delivery failed", "type", j.req.Type, "title", j.req.Title, "error", err)
	}
}

// tryQueue hands j to the workers unless the service is stopping or the queue is full.
// The send happens under the read lock, so every queued job precedes close(stopCh).
func (s *service) tryQueue(j job) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return false
	}
	select {
	case s.queue <- j:
		metrics.NotificationQueueDepth.Set(float64(len(s.queue)))
		return true
	default:
		slog.Warn("Notification queue full, delivering inline", "type", j.req.Type)
		return false
	}
}

// store resolves recipients and persists the notification as sent. It returns nil when
// nobody is left to notify.
func (s *service) store(ctx context.Context, req notification.NotifyRequest) (*notification.Notification, error) {
	recipients, err := s.resolveRecipients(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		slog.Debug("Notification has no recipients, skipping", "type", req.Type, "title", req.Title)
		return nil, nil
	}

	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityNormal
	}
	sentAt := s.now()
	n := notification.Notification{
		Title:    req.Title,
		Message:  req.Message,
		Type:     req.Type,
		Priority: priority,
		SenderID: req.SenderID,
		Data:     req.Data,
		SentAt:   &sentAt,
		IsActive: true,
	}
	for _, id := range recipients {
		n.Recipients = append(n.Recipients, notification.Recipient{UserID: id})
	}

	created, err := s.repo.Create(ctx, n)
	metrics.NotificationsDispatched.WithLabelValues("store", metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}
	return &created, nil
}

// resolveRecipients merges explicit ids with active holders of the requested roles. The
// sender is not notified about their own action through a role.
func (s *service) resolveRecipients(ctx context.Context, req notification.NotifyRequest) ([]string, error) {
	ids := slices.Clone(req.RecipientIDs)
	if len(req.RecipientRoles) > 0 {
		byRole, err := s.users.ListActiveIDsByRoles(ctx, req.RecipientRoles...)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve recipients: %w", err)
		}
		for _, id := range byRole {
			if req.SenderID != nil && id == *req.SenderID {
				continue
			}
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// deliver publishes to open SSE streams and pushes to registered devices. Failures are logged.
func (s *service) deliver(ctx context.Context, n notification.Notification) {
	recipients := n.RecipientIDs()
	if len(recipients) == 0 {
		return
	}

	event := notification.ToResponse(n)
	event.Recipients = 0
	s.hub.PublishToMany(recipients, sse.Message{Name: eventNotification, Data: event})
	metrics.NotificationsDispatched.WithLabelValues("sse", "ok").Inc()

	tokens, err := s.tokens.ListByUserIDs(ctx, recipients)
	if err != nil {
		metrics.NotificationsDispatched.WithLabelValues("push", "error").Inc()
		slog.Error("Failed to load push tokens", "notification_id", n.ID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	values := make([]string, len(tokens))
	for i, t := range tokens {
		values[i] = t.Token
	}
	result, err := s.sender.SendMulticast(ctx, values, push.Message{
		Title:    n.Title,
		Body:     n.Message,
		Data:     pushData(n),
		Priority: string(n.Priority),
	})
	metrics.NotificationsDispatched.WithLabelValues("push", metrics.Result(err)).Inc()
	if err != nil {
		slog.Error("Push delivery failed", "notification_id", n.ID, "tokens", len(values), "error", err)
		return
	}

	if len(result.InvalidTokens) > 0 {
		if err := s.tokens.DeleteTokens(ctx, result.InvalidTokens); err != nil {
			slog.Error("Failed to delete invalid push tokens", "count", len(result.InvalidTokens), "error", err)
		}
	}
	slog.Debug("Push delivered", "notification_id", n.ID, "success", result.SuccessCount, "failure", result.FailureCount)
}

// pushData flattens the payload to the string map push providers accept.
func pushData(n notification.Notification) map[string]string {
	data := make(map[string]string, len(n.Data)+2)
	for k, v := range n.Data {
		data[k] = fmt.Sprint(v)
	}
	data["notificationId"] = n.ID
	data["type"] = string(n.Type)
	return data
}

// Create implements notification.NotificationService.
func (s *service) Create(ctx context.Context, principal user.Principal, req notification.CreateNotificationRequest) (notification.NotificationResponse, error) {
	if !principal.IsPeopleAdmin() {
		return notification.NotificationResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return notification.NotificationResponse{}, err
	}

	now := s.now()
	scheduledAt, expiresAt := req.Schedule()
	if scheduledAt != nil && !scheduledAt.After(now) {
		return notification.NotificationResponse{}, notification.ErrScheduleInPast
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return notification.NotificationResponse{}, notification.ErrExpiryBeforeSchedule
	}

	recipients := req.RecipientIDs
	if req.All {
		ids, err := s.users.ListActiveIDsByRoles(ctx)
		if err != nil {
			return notification.NotificationResponse{}, fmt.Errorf("failed to resolve recipients: %w", err)
		}
		recipients = ids
	}
	recipients = slices.Compact(slices.Sorted(slices.Values(recipients)))
	if len(recipients) == 0 {
		return notification.NotificationResponse{}, notification.ErrNoRecipients
	}

	priority := notification.Priority(req.Priority)
	if priority == "" {
		priority = notification.PriorityNormal
	}
	n := notification.Notification{
		Title:       req.Title,
		Message:     req.Message,
		Type:        notification.Type(req.Type),
		Priority:    priority,
		SenderID:    &principal.UserID,
		Data:        req.Data,
		ScheduledAt: scheduledAt,
		ExpiresAt:   expiresAt,
		IsActive:    true,
	}
	if scheduledAt == nil {
		n.SentAt = &now
	}
	for _, id := range recipients {
		n.Recipients = append(n.Recipients, notification.Recipient{UserID: id})
	}

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return notification.NotificationResponse{}, fmt.Errorf("failed to create notification: %w", err)
	}

	if created.SentAt != nil {
		s.enqueue(ctx, job{req: notification.NotifyRequest{Type: created.Type, Title: created.Title}, stored: &created})
	}

	slog.Info("Notification created", "notification_id", created.ID, "recipients", len(recipients), "scheduled", scheduledAt != nil)
	return notification.ToResponse(created), nil
}

// List implements notification.NotificationService.
func (s *service) List(ctx context.Context, principal user.Principal, filter notification.InboxFilter) (notification.ListNotificationResponse, error) {
	now := s.now()
	items, total, err := s.repo.ListForUser(ctx, principal.UserID, filter, now)
	if err != nil {
		return notification.ListNotificationResponse{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.UnreadCount(ctx, principal.UserID, now)
	if err != nil {
		return notification.ListNotificationResponse{}, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	resp := make([]notification.NotificationResponse, len(items))
	for i, item := range items {
		resp[i] = notification.ToInboxResponse(item)
	}
	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	return notification.ListNotificationResponse{
		Notifications: resp,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		Limit:         limit,
	}, nil
}

// UnreadCount implements notification.NotificationService.
func (s *service) UnreadCount(ctx context.Context, principal user.Principal) (int64, error) {
	return s.repo.UnreadCount(ctx, principal.UserID, s.now())
}

// MarkRead implements notification.NotificationService.
func (s *service) MarkRead(ctx context.Context, principal user.Principal, notificationID string) error {
	return s.repo.MarkRead(ctx, notificationID, principal.UserID, s.now())
}

// MarkAllRead implements notification.NotificationService.
func (s *service) MarkAllRead(ctx context.Context, principal user.Principal) (int64, error) {
	return s.repo.MarkAllRead(ctx, principal.UserID, s.now())
}

// Delete implements notification.NotificationService.
func (s *service) Delete(ctx context.Context, principal user.Principal, notificationID string) error {
	return s.repo.DeleteForUser(ctx, notificationID, principal.UserID)
}

// RegisterToken implements notification.NotificationService.
func (s *service) RegisterToken(ctx context.Context, principal user.Principal, req notification.RegisterTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := s.tokens.Upsert(ctx, notification.FCMToken{
		UserID:     principal.UserID,
		Token:      req.Token,
		DeviceType: req.DeviceType,
	})
	return err
}

// UnregisterToken implements notification.NotificationService.
func (s *service) UnregisterToken(ctx context.Context, principal user.Principal, req notification.UnregisterTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.tokens.Delete(ctx, principal.UserID, req.Token)
}

// DispatchDue implements notification.NotificationService.
func (s *service) DispatchDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.ListDue(ctx, now, s.config.DueBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list due notifications: %w", err)
	}

	sent := 0
	for _, n := range due {
		if err := s.repo.MarkSent(ctx, n.ID, now); err != nil {
			slog.Error("Failed to mark notification sent", "notification_id", n.ID, "error", err)
			continue
		}
		n.SentAt = &now
		s.deliver(ctx, n)
		sent++
	}
	return sent, nil
}

// ExpireStale implements notification.NotificationService.
func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	return s.repo.Expire(ctx, s.now())
}

// Subscribe creates an SSE subscription for a user
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)
	metrics.SSEStreams.Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cleanup()
			metrics.SSEStreams.Dec()
		})
	}

	out := make(chan notification.SSEEvent, 10)
	go func() {
		defer close(out)
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := msg.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: msg.Name, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancel
}

// Stop drains the queue and waits for the workers. Later Notify calls run inline.
func (s *service) Stop() {
	s.stop.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
