package results

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/labresults-api/internal/domain"
)

// ResultStore is what the lookup service needs from the results table.
type ResultStore interface {
	QueryByPhone(ctx context.Context, phone string) ([]domain.AnalysisRecord, error)
	QueryByPhoneAndDate(ctx context.Context, phone, date string) ([]domain.AnalysisRecord, error)
}

// AttachmentStore is what the service needs from the raw-report bucket.
type AttachmentStore interface {
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type Service interface {
	// Lookup returns all records matching the query. Zero matches is an
	// empty list, not an error.
	Lookup(ctx context.Context, q domain.ResultsQuery) ([]domain.AnalysisRecord, error)
	// Attachment streams a raw report object. The key must belong to the
	// given phone (keys are prefixed "<phone>/").
	Attachment(ctx context.Context, phone, key string) (io.ReadCloser, string, error)
}

type service struct {
	resultRepo  ResultStore
	attachments AttachmentStore
}

func NewService(resultRepo ResultStore, attachments AttachmentStore) Service {
	return &service{resultRepo: resultRepo, attachments: attachments}
}

func (s *service) Lookup(ctx context.Context, q domain.ResultsQuery) ([]domain.AnalysisRecord, error) {
	if q.PatientPhone == "" {
		return nil, fmt.Errorf("patientPhone is required: %w", domain.ErrBadRequest)
	}
	if q.Date != "" {
		return s.resultRepo.QueryByPhoneAndDate(ctx, q.PatientPhone, q.Date)
	}
	return s.resultRepo.QueryByPhone(ctx, q.PatientPhone)
}

func (s *service) Attachment(ctx context.Context, phone, key string) (io.ReadCloser, string, error) {
	if phone == "" {
		return nil, "", fmt.Errorf("phone is required: %w", domain.ErrBadRequest)
	}
	if s.attachments == nil {
		return nil, "", fmt.Errorf("attachment store: %w", domain.ErrNotConfigured)
	}
	// Patients can only reach objects under their own phone prefix.
	if !strings.HasPrefix(key, phone+"/") {
		return nil, "", fmt.Errorf("attachment does not belong to caller: %w", domain.ErrForbidden)
	}
	body, contentType, err := s.attachments.Download(ctx, key)
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", fmt.Errorf("attachment not found: %w", domain.ErrNotFound)
		}
		return nil, "", err
	}
	return body, contentType, nil
}
