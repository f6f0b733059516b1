package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// cookieValueName binds signed cookie values to their purpose.
const cookieValueName = "wanderlust.sid"

// codec signs cookie values and encrypts stored payloads. Both key sets are
// derived from the single application secret.
type codec struct {
	cookie *securecookie.SecureCookie
	store  *securecookie.SecureCookie
}

func newCodec(secret string) (*codec, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}

	cookieHash, err := deriveKey(secret, "wanderlust session cookie")
	if err != nil {
		return nil, err
	}
	storeHash, err := deriveKey(secret, "wanderlust session store mac")
	if err != nil {
		return nil, err
	}
	storeBlock, err := deriveKey(secret, "wanderlust session store")
	if err != nil {
		return nil, err
	}

	// Expiry is enforced by the store record, so timestamps are not checked here.
	cookie := securecookie.New(cookieHash, nil).MaxAge(0)
	cookie.SetSerializer(jsonSerializer{})

	store := securecookie.New(storeHash, storeBlock).MaxAge(0).MaxLength(0)
	store.SetSerializer(jsonSerializer{})

	return &codec{cookie: cookie, store: store}, nil
}

func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// sign returns the authenticated cookie value carrying id.
func (c *codec) sign(id string) (string, error) {
	v, err := c.cookie.Encode(cookieValueName, id)
	if err != nil {
		return "", fmt.Errorf("sign session id: %w", err)
	}
	return v, nil
}

// unsign verifies a cookie value and returns the session ID inside it.
func (c *codec) unsign(value string) (string, bool) {
	var id string
	if err := c.cookie.Decode(cookieValueName, value, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// seal encrypts p. The session ID is the value name, so records cannot be
// swapped between IDs.
func (c *codec) seal(id string, p *payload) ([]byte, error) {
	v, err := c.store.Encode(id, p)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return []byte(v), nil
}

func (c *codec) open(id string, data []byte, p *payload) error {
	if err := c.store.Decode(id, string(data), p); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	return nil
}

// jsonSerializer plugs goccy/go-json into securecookie.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(src interface{}) ([]byte, error) {
	return json.Marshal(src)
}

func (jsonSerializer) Deserialize(src []byte, dst interface{}) error {
	return json.Unmarshal(src, dst)
}
