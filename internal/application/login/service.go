package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/labresults-api/internal/domain"
	"github.com/labresults-api/internal/infrastructure/sns"
	"github.com/labresults-api/internal/infrastructure/telegram"
	"github.com/labresults-api/internal/pkg/otp"
)

// ChatEvent is the provider-agnostic distillation of an inbound bot update.
// SenderID is empty when the update carries no identifiable sender.
type ChatEvent struct {
	ChatID       int64
	SenderID     string
	FirstName    string
	LastName     string
	ContactPhone string // phone from a contact shared in this event, if any
}

// OutcomeKind describes what the issuer did with a chat event.
type OutcomeKind string

const (
	OutcomeIgnored          OutcomeKind = "ignored"
	OutcomeContactRequested OutcomeKind = "contact_requested"
	OutcomeCodeIssued       OutcomeKind = "code_issued"
	OutcomeCodeReused       OutcomeKind = "code_reused"
)

// Outcome is the acknowledged result of handling a chat event.
type Outcome struct {
	Kind OutcomeKind
}

// VerificationStore is what the login service needs from the verification table.
type VerificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, telegramUserID string) (*domain.UserVerification, error)
	FindByCode(ctx context.Context, code string, now int64) (*domain.UserVerification, error)
	ClearCode(ctx context.Context, telegramUserID, code string) error
}

type Service interface {
	// HandleChatEvent runs the code-issuance flow for one inbound update.
	HandleChatEvent(ctx context.Context, ev ChatEvent) (Outcome, error)
	// VerifyCode consumes a submitted code and returns the verified identity.
	VerifyCode(ctx context.Context, code string) (*domain.VerifiedUser, error)
}

type ServiceDeps struct {
	VerificationRepo VerificationStore
	Chat             telegram.Sender
	SMSSender        sns.SMSSender // optional code mirror, may be nil
	CodeTTL          time.Duration
	Now              func() time.Time // defaults to time.Now
}

type service struct {
	verificationRepo VerificationStore
	chat             telegram.Sender
	smsSender        sns.SMSSender
	codeTTL          time.Duration
	now              func() time.Time
}

func NewService(deps ServiceDeps) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.CodeTTL <= 0 {
		deps.CodeTTL = 2 * time.Minute
	}
	return &service{
		verificationRepo: deps.VerificationRepo,
		chat:             deps.Chat,
		smsSender:        deps.SMSSender,
		codeTTL:          deps.CodeTTL,
		now:              deps.Now,
	}
}

func (s *service) HandleChatEvent(ctx context.Context, ev ChatEvent) (Outcome, error) {
	if ev.SenderID == "" {
		// Service updates (channel posts, edits) carry no sender. Acknowledged no-op.
		return Outcome{Kind: OutcomeIgnored}, nil
	}

	rec, err := s.verificationRepo.Get(ctx, ev.SenderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return Outcome{}, err
		}
		rec = &domain.UserVerification{TelegramUserID: ev.SenderID}
	}

	// Display name is best-effort and refreshed on every interaction.
	rec.Name = displayName(ev.FirstName, ev.LastName)

	// A phone is learned once: a freshly shared contact fills an empty
	// slot but never overwrites an established one.
	if rec.Phone == "" && ev.ContactPhone != "" {
		rec.Phone = ev.ContactPhone
	}

	if rec.Phone == "" {
		if err := s.verificationRepo.Put(ctx, rec); err != nil {
			return Outcome{}, err
		}
		if err := s.chat.RequestContact(ev.ChatID,
			"To receive your login code, please share your phone number.",
			"Share phone number"); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeContactRequested}, nil
	}

	now := s.now().Unix()
	reused := rec.HasActiveCode(now)
	if !reused {
		code, err := s.uniqueCode(ctx, now)
		if err != nil {
			return Outcome{}, err
		}
		rec.Code = code
		rec.CodeCreatedAt = now
		rec.CodeExpiresAt = now + int64(s.codeTTL.Seconds())
	}

	// Persist before dispatch: a code the user received must exist in the store.
	if err := s.verificationRepo.Put(ctx, rec); err != nil {
		return Outcome{}, err
	}

	if err := s.chat.SendText(ev.ChatID, codeMessage(rec.Code, reused, s.codeTTL)); err != nil {
		return Outcome{}, err
	}

	if !reused && s.smsSender != nil {
		// Best-effort mirror over SMS for users who miss the chat reply.
		if err := s.smsSender.SendSMS(ctx, rec.Phone, "Your login code: "+rec.Code); err != nil {
			slog.Warn("failed to mirror code over SMS", "telegram_user_id", rec.TelegramUserID, "err", err)
		}
	}

	if reused {
		return Outcome{Kind: OutcomeCodeReused}, nil
	}
	return Outcome{Kind: OutcomeCodeIssued}, nil
}

func (s *service) VerifyCode(ctx context.Context, code string) (*domain.VerifiedUser, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required: %w", domain.ErrBadRequest)
	}
	rec, err := s.verificationRepo.FindByCode(ctx, code, s.now().Unix())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if rec.TelegramUserID == "" {
		// A row without its own partition key should be impossible.
		return nil, fmt.Errorf("corrupt verification record for code")
	}
	if err := s.verificationRepo.ClearCode(ctx, rec.TelegramUserID, code); err != nil {
		return nil, err
	}
	return &domain.VerifiedUser{
		TelegramUserID: rec.TelegramUserID,
		Phone:          rec.Phone,
		Name:           rec.Name,
	}, nil
}

// uniqueCode draws codes until one is not held by any unexpired record,
// so a submitted code can never match two users.
func (s *service) uniqueCode(ctx context.Context, now int64) (string, error) {
	const maxAttempts = 5
	for i := 0; i < maxAttempts; i++ {
		code, err := otp.NewCode()
		if err != nil {
			return "", err
		}
		_, err = s.verificationRepo.FindByCode(ctx, code, now)
		if errors.Is(err, domain.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("could not allocate a unique code after %d attempts", maxAttempts)
}

func displayName(first, last string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return "Unknown"
	}
	return name
}

func codeMessage(code string, reused bool, ttl time.Duration) string {
	if reused {
		return fmt.Sprintf("Your verification code is: %s\n\nIt is still valid from your previous request.", code)
	}
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in %d minutes.", code, minutes)
}
