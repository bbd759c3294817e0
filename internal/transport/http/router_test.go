package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labresults-api/internal/config"
	"github.com/labresults-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stubs ---

type stubVerificationStore struct {
	records map[string]*domain.UserVerification
}

func (s *stubVerificationStore) Put(_ context.Context, v *domain.UserVerification) error {
	if s.records == nil {
		s.records = map[string]*domain.UserVerification{}
	}
	cp := *v
	s.records[v.TelegramUserID] = &cp
	return nil
}

func (s *stubVerificationStore) Get(_ context.Context, telegramUserID string) (*domain.UserVerification, error) {
	if v, ok := s.records[telegramUserID]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
}

func (s *stubVerificationStore) FindByCode(_ context.Context, code string, now int64) (*domain.UserVerification, error) {
	for _, v := range s.records {
		if v.Code == code && v.CodeExpiresAt > now {
			cp := *v
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("no unexpired holder of code: %w", domain.ErrNotFound)
}

func (s *stubVerificationStore) ClearCode(_ context.Context, telegramUserID, code string) error {
	v, ok := s.records[telegramUserID]
	if !ok || v.Code != code {
		return fmt.Errorf("code already consumed: %w", domain.ErrUnauthorized)
	}
	v.Code = ""
	v.CodeCreatedAt = 0
	v.CodeExpiresAt = 0
	return nil
}

type stubResultStore struct {
	records []domain.AnalysisRecord
}

func (s *stubResultStore) QueryByPhone(_ context.Context, phone string) ([]domain.AnalysisRecord, error) {
	out := []domain.AnalysisRecord{}
	for _, r := range s.records {
		if r[domain.ResultAttrPhone] == phone {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubResultStore) QueryByPhoneAndDate(_ context.Context, phone, date string) ([]domain.AnalysisRecord, error) {
	out := []domain.AnalysisRecord{}
	for _, r := range s.records {
		if r[domain.ResultAttrPhone] == phone && r[domain.ResultAttrDate] == date {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubChat struct{ sent []string }

func (s *stubChat) SendText(_ int64, text string) error { s.sent = append(s.sent, text); return nil }
func (s *stubChat) RequestContact(_ int64, text, _ string) error {
	s.sent = append(s.sent, text)
	return nil
}

type stubAttachments struct{}

func (stubAttachments) Download(_ context.Context, _ string) (io.ReadCloser, string, error) {
	return io.NopCloser(bytes.NewBufferString("%PDF-1.7")), "application/pdf", nil
}

func newTestRouter(t *testing.T, deps *Deps) http.Handler {
	t.Helper()
	cfg := config.Load()
	return NewRouter(cfg, deps)
}

// --- tests ---

func TestRouter_PreflightAllowedForAnyOrigin(t *testing.T) {
	router := newTestRouter(t, &Deps{
		VerificationRepo: &stubVerificationStore{},
		ResultRepo:       &stubResultStore{},
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/results", nil)
	req.Header.Set("Origin", "https://portal.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Body.String())
}

func TestRouter_WebhookWithoutBot_500(t *testing.T) {
	router := newTestRouter(t, &Deps{
		VerificationRepo: &stubVerificationStore{},
		ResultRepo:       &stubResultStore{},
		Chat:             nil,
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/telegram/webhook",
		bytes.NewBufferString(`{"update_id":1}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRouter_ResultsMe_RequiresBearer(t *testing.T) {
	router := newTestRouter(t, &Deps{
		VerificationRepo: &stubVerificationStore{},
		ResultRepo:       &stubResultStore{},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/results/me", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_FullLoginAndLookupFlow(t *testing.T) {
	vs := &stubVerificationStore{}
	rs := &stubResultStore{records: []domain.AnalysisRecord{
		{domain.ResultAttrPhone: "+998901112233", domain.ResultAttrDate: "2024-01-15", "analysis": "CBC"},
	}}
	chat := &stubChat{}
	router := newTestRouter(t, &Deps{
		VerificationRepo: vs,
		ResultRepo:       rs,
		AttachmentStore:  stubAttachments{},
		Chat:             chat,
	})

	// 1. First contact: no phone on file, bot asks for it.
	webhook := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/telegram/webhook", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}
	rr := webhook(`{"update_id":1,"message":{"message_id":1,"from":{"id":555,"first_name":"Ali"},"chat":{"id":42},"text":"hi"}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, vs.records, "555")
	assert.Empty(t, vs.records["555"].Code)

	// 2. Contact shared: a code is issued and persisted.
	rr = webhook(`{"update_id":2,"message":{"message_id":2,"from":{"id":555,"first_name":"Ali"},"chat":{"id":42},"contact":{"phone_number":"+998901112233","user_id":555}}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	code := vs.records["555"].Code
	require.Regexp(t, `^\d{6}$`, code)

	// 3. Verify the code.
	req := httptest.NewRequest(http.MethodPost, "/v1/verify-code",
		bytes.NewBufferString(fmt.Sprintf(`{"code":%q}`, code)))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"phone":"+998901112233"`)
	assert.Empty(t, vs.records["555"].Code)

	// 4. Same code a second time is rejected.
	req = httptest.NewRequest(http.MethodPost, "/v1/verify-code",
		bytes.NewBufferString(fmt.Sprintf(`{"code":%q}`, code)))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// 5. Bearer-phone lookup returns the patient's records.
	req = httptest.NewRequest(http.MethodGet, "/v1/results/me", nil)
	req.Header.Set("Authorization", "Bearer +998901112233")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"analysis":"CBC"`)
}
