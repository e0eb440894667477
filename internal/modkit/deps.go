// Package modkit provides module wiring and core deps
package modkit

import (
	"oppwatch/internal/adapters/crm"
	"oppwatch/internal/adapters/mail"
	"oppwatch/internal/platform/config"
	"oppwatch/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log  logger.Logger
	Cfg  config.Conf
	CRM  crm.Querier
	Mail mail.Sender
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check the CRM querier when it is optional
func (d Deps) ZeroOK() bool { return true }
