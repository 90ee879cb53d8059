package user

import (
	"github.com/safetydesk/safetydesk/internal/user/repository"
	"github.com/safetydesk/safetydesk/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
