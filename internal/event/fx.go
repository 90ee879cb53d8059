package event

import (
	"github.com/safetydesk/safetydesk/internal/event/repository"
	"github.com/safetydesk/safetydesk/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
