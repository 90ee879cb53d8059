package notification

import (
	"github.com/safetydesk/safetydesk/internal/notification/repository"
	"github.com/safetydesk/safetydesk/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
