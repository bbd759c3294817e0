package domain

// UserVerification is one row of the verification table, keyed by the
// Telegram user id. Phone and Name persist for the lifetime of the row;
// the three code attributes exist only while a login code is outstanding
// and are removed together on successful verification.
//
// The table must NOT carry a DynamoDB TTL: expiry would delete the whole
// item, but phone and name have to outlive the code.
type UserVerification struct {
	TelegramUserID string `json:"telegram_user_id" dynamodbav:"telegram_user_id"`
	Phone          string `json:"phone" dynamodbav:"phone"`
	Name           string `json:"name" dynamodbav:"name"`
	Code           string `json:"code,omitempty" dynamodbav:"code,omitempty"`
	CodeCreatedAt  int64  `json:"code_created_at,omitempty" dynamodbav:"code_created_at,omitempty"`
	CodeExpiresAt  int64  `json:"code_expires_at,omitempty" dynamodbav:"code_expires_at,omitempty"`
}

// HasActiveCode reports whether an unexpired code is outstanding at now (Unix seconds).
func (v *UserVerification) HasActiveCode(now int64) bool {
	return v.Code != "" && v.CodeExpiresAt > now
}

// VerifiedUser is the identity returned to the client after a successful
// code verification. All fields default to the empty string, never null.
type VerifiedUser struct {
	TelegramUserID string `json:"telegramUserId"`
	Phone          string `json:"phone"`
	Name           string `json:"name"`
}
