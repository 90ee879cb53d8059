package audit

import (
	"github.com/safetydesk/safetydesk/internal/audit/repository"
	"github.com/safetydesk/safetydesk/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
