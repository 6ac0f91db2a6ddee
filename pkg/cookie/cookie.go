package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrDecrypt   = errors.New("cookie: decryption failed")
)

const flashPrefix = "flash_"

// Jar holds the attributes applied to every cookie an application sets.
type Jar struct {
	secret   []byte
	Domain   string
	Path     string
	Lifetime time.Duration // 0 = session cookie
	SameSite http.SameSite
	Secure   bool
	HTTPOnly bool
}

// Option configures a Jar.
type Option func(*Jar)

// New creates a Jar with path "/", HttpOnly and SameSite=Lax.
func New(opts ...Option) *Jar {
	j := &Jar{
		Path:     "/",
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// FromMap creates a Jar from settings keyed expire (seconds), path,
// domain, secure, httponly, samesite (lax, strict or none) and secret.
// Missing keys keep the New defaults; opts are applied last.
func FromMap(settings map[string]any, opts ...Option) *Jar {
	j := New()
	for key, v := range settings {
		switch strings.ToLower(key) {
		case "expire", "lifetime":
			j.Lifetime = time.Duration(cast.ToInt64(v)) * time.Second
		case "path":
			if p := cast.ToString(v); p != "" {
				j.Path = p
			}
		case "domain":
			j.Domain = cast.ToString(v)
		case "secure":
			j.Secure = cast.ToBool(v)
		case "httponly":
			j.HTTPOnly = cast.ToBool(v)
		case "samesite":
			j.SameSite = ParseSameSite(cast.ToString(v))
		case "secret":
			_ = j.SetSecret(cast.ToString(v))
		}
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// ParseSameSite maps lax, strict and none to their modes; anything else
// leaves the attribute to the browser default.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

// WithSecret sets the key for signed and encrypted cookies. Shorter
// secrets are ignored.
func WithSecret(secret string) Option {
	return func(j *Jar) {
		if len(secret) >= 32 {
			j.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(j *Jar) {
		j.Domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(j *Jar) {
		j.Path = path
	}
}

// WithLifetime sets the default max age.
func WithLifetime(d time.Duration) Option {
	return func(j *Jar) {
		j.Lifetime = d
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(j *Jar) {
		j.Secure = secure
	}
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(j *Jar) {
		j.HTTPOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(j *Jar) {
		j.SameSite = ss
	}
}

// SetSecret sets the key for signed and encrypted cookies.
func (j *Jar) SetSecret(secret string) error {
	if len(secret) < 32 {
		return ErrBadSecret
	}
	j.secret = []byte(secret)
	return nil
}

// HasSecret reports whether signed and encrypted cookies are available.
func (j *Jar) HasSecret() bool {
	return j.secret != nil
}

// Cookie builds a cookie carrying the jar attributes. A zero lifetime
// uses the jar default; a negative one expires the cookie.
func (j *Jar) Cookie(name, value string, lifetime time.Duration) *http.Cookie {
	if lifetime == 0 {
		lifetime = j.Lifetime
	}
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.Path,
		Domain:   j.Domain,
		Secure:   j.Secure,
		HttpOnly: j.HTTPOnly,
		SameSite: j.SameSite,
	}
	switch {
	case lifetime < 0:
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	case lifetime > 0:
		c.MaxAge = int(lifetime / time.Second)
	}
	return c
}

// Get returns a plain cookie value.
func (j *Jar) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie.
func (j *Jar) Set(w http.ResponseWriter, name, value string, lifetime time.Duration) {
	http.SetCookie(w, j.Cookie(name, value, lifetime))
}

// Delete expires a cookie.
func (j *Jar) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, j.Cookie(name, "", -1))
}

// GetSigned returns the value of a cookie written by SetSigned.
func (j *Jar) GetSigned(r *http.Request, name string) (string, error) {
	if j.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := j.Get(r, name)
	if err != nil {
		return "", err
	}

	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil || !hmac.Equal(sig, j.sign(value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// SetSigned writes base64(value) "." base64(hmac-sha256(value)).
func (j *Jar) SetSigned(w http.ResponseWriter, name, value string, lifetime time.Duration) error {
	if j.secret == nil {
		return ErrNoSecret
	}
	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(j.sign([]byte(value)))
	j.Set(w, name, encoded, lifetime)
	return nil
}

// GetEncrypted returns the value of a cookie written by SetEncrypted.
func (j *Jar) GetEncrypted(r *http.Request, name string) (string, error) {
	if j.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := j.Get(r, name)
	if err != nil {
		return "", err
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}
	plain, err := j.open(data)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// SetEncrypted writes an AES-GCM sealed cookie.
func (j *Jar) SetEncrypted(w http.ResponseWriter, name, value string, lifetime time.Duration) error {
	if j.secret == nil {
		return ErrNoSecret
	}
	sealed, err := j.seal([]byte(value))
	if err != nil {
		return err
	}
	j.Set(w, name, base64.RawURLEncoding.EncodeToString(sealed), lifetime)
	return nil
}

// Flash decodes a flash value into dest and expires it.
func (j *Jar) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	raw, err := j.GetEncrypted(r, flashPrefix+key)
	if err != nil {
		return err
	}
	j.Delete(w, flashPrefix+key)
	return json.Unmarshal([]byte(raw), dest)
}

// SetFlash stores value for the next request as a session cookie.
func (j *Jar) SetFlash(w http.ResponseWriter, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return j.SetEncrypted(w, flashPrefix+key, string(data), 0)
}

func (j *Jar) sign(value []byte) []byte {
	mac := hmac.New(sha256.New, j.secret)
	mac.Write(value)
	return mac.Sum(nil)
}

func (j *Jar) aead() (cipher.AEAD, error) {
	key := sha256.Sum256(j.secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (j *Jar) seal(plain []byte) ([]byte, error) {
	aead, err := j.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

func (j *Jar) open(data []byte) ([]byte, error) {
	aead, err := j.aead()
	if err != nil {
		return nil, err
	}
	n := aead.NonceSize()
	if len(data) < n {
		return nil, ErrDecrypt
	}
	return aead.Open(nil, data[:n], data[n:], nil)
}
