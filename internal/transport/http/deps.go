package http

import (
	"github.com/labresults-api/internal/application/login"
	"github.com/labresults-api/internal/application/results"
	"github.com/labresults-api/internal/infrastructure/sns"
	"github.com/labresults-api/internal/infrastructure/telegram"
)

// Deps holds all infrastructure dependencies for the router. Everything
// is an interface so tests can substitute doubles for the store and
// chat-API boundaries.
type Deps struct {
	VerificationRepo login.VerificationStore
	ResultRepo       results.ResultStore
	AttachmentStore  results.AttachmentStore
	Chat             telegram.Sender // nil when no bot token is configured
	SMSSender        sns.SMSSender   // optional code mirror, may be nil
}
