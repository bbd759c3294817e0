package dynamo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labresults-api/internal/domain"
)

func TestVerificationUpdates_OutstandingCode(t *testing.T) {
	v := &domain.UserVerification{
		TelegramUserID: "42",
		Phone:          "+998901112233",
		Name:           "Alice Smith",
		Code:           "123456",
		CodeCreatedAt:  1700000000,
		CodeExpiresAt:  1700000120,
	}

	updates := verificationUpdates(v)

	assert.Equal(t, map[string]interface{}{
		"phone":           "+998901112233",
		"name":            "Alice Smith",
		"code":            "123456",
		"code_created_at": int64(1700000000),
		"code_expires_at": int64(1700000120),
	}, updates)
}

func TestVerificationUpdates_NoCode_OmitsCodeAttributes(t *testing.T) {
	v := &domain.UserVerification{
		TelegramUserID: "42",
		Phone:          "",
		Name:           "Alice Smith",
	}

	updates := verificationUpdates(v)

	assert.Equal(t, map[string]interface{}{"phone": "", "name": "Alice Smith"}, updates)
	assert.NotContains(t, updates, "code")
	assert.NotContains(t, updates, "code_created_at")
	assert.NotContains(t, updates, "code_expires_at")
}

func TestVerificationUpdates_BuildsSetExpression(t *testing.T) {
	v := &domain.UserVerification{
		TelegramUserID: "42",
		Phone:          "+998901112233",
		Name:           "Alice Smith",
		Code:           "654321",
		CodeCreatedAt:  1700000000,
		CodeExpiresAt:  1700000120,
	}

	ue, err := buildUpdateExpr(verificationUpdates(v))
	require.NoError(t, err)

	// Sorted: code < code_created_at < code_expires_at < name < phone
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2, #f3 = :v3, #f4 = :v4", ue.Expr)
	assert.Equal(t, map[string]string{
		"#f0": "code",
		"#f1": "code_created_at",
		"#f2": "code_expires_at",
		"#f3": "name",
		"#f4": "phone",
	}, ue.Names)
	assert.Len(t, ue.Values, 5)
}
