// Package module wires the report service and exposes its ports
package module

import (
	"oppwatch/internal/modkit"
	"oppwatch/internal/services/report/render"
	"oppwatch/internal/services/report/repo"
	"oppwatch/internal/services/report/service"
)

// Module defines the report module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the report module with its ports.
// Defaults come from config, then explicit CLI overrides win
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)

	if len(overrides.Subscribers) != 0 {
		opts.Subscribers = overrides.Subscribers
	}
	if overrides.Mode != "" {
		opts.Mode = overrides.Mode
	}
	if overrides.MinTouches != 0 {
		opts.MinTouches = overrides.MinTouches
	}
	if overrides.StaleDays != 0 {
		opts.StaleDays = overrides.StaleDays
	}
	if overrides.MonthsBack != 0 {
		opts.MonthsBack = overrides.MonthsBack
	}
	if overrides.DryRun {
		opts.DryRun = true
	}
	modkit.MustOptions(opts)

	reader := repo.New(deps.CRM, repo.Config{
		MonthsBack:      opts.MonthsBack,
		ExcludeNameLike: opts.ExcludeNameLike,
	})
	classifier := service.NewClassifier(reader, opts.AutomatedNames, opts.AutomatedLicenses)
	svc := service.New(
		reader,
		classifier,
		render.New(),
		deps.Mail,
		deps.CRM.InstanceURL,
		service.Config{
			Subscribers: opts.Subscribers,
			CC:          opts.CC,
			Mode:        service.Mode(opts.Mode),
			MinTouches:  opts.MinTouches,
			StaleDays:   opts.StaleDays,
			DryRun:      opts.DryRun,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{
		Runner: svc,
		Reader: reader,
	}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "report" }

// Ports returns the module ports (Runner, Reader)
func (m *Module) Ports() any { return m.ports }
