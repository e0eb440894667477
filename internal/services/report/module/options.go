package module

import (
	"oppwatch/internal/platform/config"
	"oppwatch/internal/services/report/service"
)

// defaults mirror the license and name labels the source grants to
// integration and system users
var (
	defaultAutomatedNames = []string{
		"Automated Process",
	}
	defaultAutomatedLicenses = []string{
		"Salesforce Integration",
		"Salesforce API Only System Integrations",
		"Identity",
		"Automated Process",
	}
)

// Options controls the report run. Values come from env and may be
// overridden by flags
type Options struct {
	Subscribers []string `conf:"REPORT_SUBSCRIBERS"`
	CC          []string `conf:"REPORT_CC"`

	Mode       string `conf:"REPORT_MODE" validate:"oneof=all threshold"`
	MinTouches int    `conf:"REPORT_MIN_TOUCHES" validate:"gte=0"`
	StaleDays  int    `conf:"REPORT_STALE_DAYS" validate:"gte=1"`

	// Opportunity query scope
	MonthsBack      int    `conf:"REPORT_MONTHS_BACK" validate:"gte=1,lte=24"`
	ExcludeNameLike string `conf:"REPORT_EXCLUDE_NAME_LIKE"`

	// Classification exclusion lists
	AutomatedNames    []string `conf:"REPORT_AUTOMATED_NAMES"`
	AutomatedLicenses []string `conf:"REPORT_AUTOMATED_LICENSES"`

	DryRun bool `conf:"REPORT_DRYRUN"`
}

// FromConfig reads options using the REPORT_ prefix
func FromConfig(cfg config.Conf) Options {
	rp := cfg.Prefix("REPORT_")
	return Options{
		Subscribers:       rp.MayCSV("SUBSCRIBERS", nil),
		CC:                rp.MayCSV("CC", nil),
		Mode:              rp.MayEnum("MODE", string(service.ModeAll), string(service.ModeAll), string(service.ModeThreshold)),
		MinTouches:        rp.MayInt("MIN_TOUCHES", 2),
		StaleDays:         rp.MayInt("STALE_DAYS", 60),
		MonthsBack:        rp.MayInt("MONTHS_BACK", 6),
		ExcludeNameLike:   rp.MayString("EXCLUDE_NAME_LIKE", "%TVG%"),
		AutomatedNames:    rp.MayCSV("AUTOMATED_NAMES", defaultAutomatedNames),
		AutomatedLicenses: rp.MayCSV("AUTOMATED_LICENSES", defaultAutomatedLicenses),
		DryRun:            rp.MayBool("DRYRUN", false),
	}
}
