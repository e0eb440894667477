package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"oppwatch/internal/adapters/crm"
	"oppwatch/internal/adapters/mail"
	"oppwatch/internal/modkit"
	"oppwatch/internal/modkit/module"
	"oppwatch/internal/platform/config"
	"oppwatch/internal/platform/logger"

	reportmod "oppwatch/internal/services/report/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

// crmOptions builds the query client config from the CRM_ env prefix
func crmOptions(root config.Conf) crm.Options {
	cc := root.Prefix("CRM_")
	opts := crm.Options{
		ClientID:        cc.MustString("CLIENT_ID"),
		ClientSecret:    cc.MustString("CLIENT_SECRET"),
		Domain:          cc.MayString("DOMAIN", "login"),
		RedirectURI:     cc.MayString("REDIRECT_URI", "http://localhost:8400/callback"),
		RefreshToken:    cc.MayString("REFRESH_TOKEN", ""),
		TokenCachePath:  cc.MayString("TOKEN_CACHE", ".token_cache.json"),
		CallbackTimeout: cc.MayDuration("CALLBACK_TIMEOUT", 120*time.Second),
		MaxRetries:      cc.MayInt("MAX_RETRIES", 3),
		RetryBase:       cc.MayDuration("RETRY_BASE", 2*time.Second),
		BatchSize:       cc.MayInt("BATCH_SIZE", 200),
		Timeout:         cc.MayDuration("TIMEOUT", 60*time.Second),
	}
	modkit.MustOptions(opts)
	return opts
}

// mailOptions builds the SMTP config from the MAIL_ env prefix
func mailOptions(root config.Conf) mail.Options {
	mc := root.Prefix("MAIL_")
	opts := mail.Options{
		Host:     mc.MustString("HOST"),
		Port:     mc.MayInt("PORT", 587),
		Username: mc.MayString("USERNAME", ""),
		Password: mc.MayString("PASSWORD", ""),
		From:     mc.MustString("FROM"),
		Timeout:  mc.MayDuration("TIMEOUT", 30*time.Second),
	}
	modkit.MustOptions(opts)
	return opts
}

func main() {
	// .env is optional; real deployments inject env directly
	_ = godotenv.Load()

	root := config.New()
	l := logger.Get()

	// Flags override env-provided report knobs
	var (
		fDryRun     = flag.Bool("dryrun", false, "compute and render but send nothing")
		fMode       = flag.String("mode", "", "qualification mode: all | threshold")
		fMinTouches = flag.Int("min-touches", 0, "touch count needed to qualify (threshold mode)")
		fStaleDays  = flag.Int("stale-days", 0, "age in days after which a record is stale")
		fMonths     = flag.Int("months", 0, "how many months back to include opportunities from")
	)
	flag.Parse()

	mustSetEnv("REPORT_MODE", *fMode)
	if *fStaleDays > 0 {
		mustSetEnv("REPORT_STALE_DAYS", fmt.Sprintf("%d", *fStaleDays))
	}
	if *fMinTouches > 0 {
		mustSetEnv("REPORT_MIN_TOUCHES", fmt.Sprintf("%d", *fMinTouches))
	}

	// nothing to route means nothing to do; bail before any auth flow
	// can prompt for a browser login
	if subs := root.Prefix("REPORT_").MayCSV("SUBSCRIBERS", nil); len(subs) == 0 {
		l.Warn().Msg("no subscribers configured (set REPORT_SUBSCRIBERS), skipping run")
		return
	}

	ctx := context.Background()

	client := crm.New(crmOptions(root))
	if err := client.Connect(ctx); err != nil {
		l.Fatal().Err(err).Msg("remote source authentication failed")
	}

	var sender mail.Sender
	if *fDryRun {
		sender = mail.NewDryRun()
	} else {
		sender = mail.NewSMTP(mailOptions(root))
	}

	deps := modkit.Deps{
		Log:  *l,
		Cfg:  root,
		CRM:  client,
		Mail: sender,
	}

	rm := reportmod.New(deps, reportmod.Options{
		Mode:       *fMode,
		MinTouches: *fMinTouches,
		StaleDays:  *fStaleDays,
		MonthsBack: *fMonths,
		DryRun:     *fDryRun,
	})
	module.Register(rm.Name(), rm.Ports())
	ports := module.MustPortsOf[reportmod.Ports](rm)

	summary, err := ports.Runner.Run(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("report run failed")
	}

	l.Info().
		Int("opportunities", summary.Opportunities).
		Int("activities", summary.Activities).
		Int("rows", summary.Rows).
		Int("stale", summary.Stale).
		Int("sent", summary.Sent).
		Bool("dryrun", summary.DryRun).
		Msg("report run finished")
}
