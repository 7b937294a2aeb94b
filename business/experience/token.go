package experience

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pobyzaarif/goshortcute"
)

var ErrInvalidSessionToken = errors.New("invalid or expired session token")

// SessionTokens issues opaque session tokens: "<uuid>|<expiry unix>"
// encrypted with AES-CBC and base64 encoded, so clients cannot mint ids.
type SessionTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessionTokens(key string, ttl time.Duration) (*SessionTokens, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, errors.New("session key must be 16, 24 or 32 bytes")
	}
	return &SessionTokens{key: []byte(key), ttl: ttl, now: time.Now}, nil
}

// Issue returns a new token and the session id it carries.
func (t *SessionTokens) Issue() (token string, sessionID string, expiresAt time.Time, err error) {
	sessionID = uuid.NewString()
	expiresAt = t.now().Add(t.ttl)

	plain := fmt.Sprintf("%s|%d", sessionID, expiresAt.Unix())
	encrypted, err := goshortcute.AESCBCEncrypt([]byte(plain), t.key)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to encrypt session token: %w", err)
	}

	return goshortcute.StringtoBase64Encode(encrypted), sessionID, expiresAt, nil
}

// Parse returns the session id carried by token.
func (t *SessionTokens) Parse(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidSessionToken
	}

	decoded := goshortcute.StringtoBase64Decode(token)
	if decoded == "" {
		return "", ErrInvalidSessionToken
	}
	plain, err := decrypt([]byte(decoded), t.key)
	if err != nil {
		return "", ErrInvalidSessionToken
	}

	parts := strings.Split(plain, "|")
	if len(parts) != 2 {
		return "", ErrInvalidSessionToken
	}

	sessionID, expAt := parts[0], parts[1]
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", ErrInvalidSessionToken
	}

	ts, err := strconv.ParseInt(expAt, 10, 64)
	if err != nil {
		return "", ErrInvalidSessionToken
	}
	if !t.now().Before(time.Unix(ts, 0)) {
		return "", ErrInvalidSessionToken
	}

	return sessionID, nil
}

// decrypt recovers from the block cipher panicking on ciphertext that is
// not a whole number of blocks.
func decrypt(data, key []byte) (plain string, err error) {
	defer func() {
		if r := recover(); r != nil {
			plain, err = "", ErrInvalidSessionToken
		}
	}()
	return goshortcute.AESCBCDecrypt(data, key)
}
