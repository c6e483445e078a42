package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-admin/internal/config"
	"github.com/spec-kit/marketplace-admin/internal/events"
)

// NotificationService turns auth-domain events into operator notifications:
// audit log lines for everything, a security email stub for password changes.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to auth events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAdminLoggedIn, n.handleAudit)
	n.dispatcher.Subscribe(events.EventAdminLoginFailed, n.handleAudit)
	n.dispatcher.Subscribe(events.EventAdminLoggedOut, n.handleAudit)
	n.dispatcher.Subscribe(events.EventAdminProfileUpdated, n.handleAudit)
	n.dispatcher.Subscribe(events.EventAdminRoleAssigned, n.handleAudit)
	n.dispatcher.Subscribe(events.EventAdminPasswordChange, n.handlePasswordChanged)
}

func (n *NotificationService) handleAudit(ctx context.Context, event events.Event) error {
	n.logger.Info("auth event",
		zap.String("event_type", string(event.Type)),
		zap.Int64("admin_id", event.AdminID),
		zap.String("email", event.Email),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handlePasswordChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("auth event",
		zap.String("event_type", string(event.Type)),
		zap.Int64("admin_id", event.AdminID))
	n.sendEmailNotificationStub(ctx, event, "Your admin console password was changed")
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event, subject string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || event.Email == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", event.Email),
		zap.String("subject", subject),
		zap.String("event_type", string(event.Type)))
}
