package rbac

import (
	eventdomain "github.com/safetydesk/safetydesk/internal/event/domain"
	"github.com/safetydesk/safetydesk/internal/rbac/repository"
	"github.com/safetydesk/safetydesk/internal/rbac/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rbac.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewResolver),
	fx.Provide(func(svc eventdomain.Service) service.SlugDirectory { return svc }),
	fx.Provide(service.NewGuard),
	fx.Provide(service.NewGrantService),
)
