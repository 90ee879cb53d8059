package report

import (
	"github.com/safetydesk/safetydesk/internal/report/repository"
	"github.com/safetydesk/safetydesk/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
