package organization

import (
	"github.com/safetydesk/safetydesk/internal/organization/repository"
	"github.com/safetydesk/safetydesk/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
