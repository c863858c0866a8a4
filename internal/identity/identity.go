// Package identity implements the identity-provider contract: it issues
// custom tokens, verifies bearer tokens (including custom claims such as the
// admin flag), and manages password credentials.
package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultIssuer   = "reelbase-identity"
	defaultAudience = "reelbase-api"
	defaultTokenTTL = time.Hour
	defaultLeeway   = 30 * time.Second
)

// ErrInvalidToken is returned for any token the verifier rejects.
var ErrInvalidToken = errors.New("identity: invalid token")

// Claims is the decoded view of a verified bearer token. Custom carries the
// caller-defined claim map exactly as baked into the token at issue time.
type Claims struct {
	UID    string
	Admin  bool
	Custom map[string]any
}

// Options tunes token issue/verify behavior.
type Options struct {
	Issuer   string
	Audience string
	TokenTTL time.Duration
	Leeway   time.Duration
}

// Service signs and verifies RS256 custom tokens with a kid header.
type Service struct {
	signer   *rsa.PrivateKey
	keyID    string
	verifier *rsa.PublicKey

	issuer   string
	audience string
	ttl      time.Duration
	leeway   time.Duration
}

// NewFromPEMFile loads the signing key from a PEM file (PKCS#1 or PKCS#8).
func NewFromPEMFile(privateKeyPath, keyID string, opts Options) (*Service, error) {
	data, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load identity key: %w", err)
	}
	key, err := parseRSAPrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse identity key: %w", err)
	}
	return NewFromKey(key, keyID, opts), nil
}

// NewFromKey builds a service around an in-memory key (used by tests).
func NewFromKey(key *rsa.PrivateKey, keyID string, opts Options) *Service {
	if strings.TrimSpace(keyID) == "" {
		keyID = "identity-active"
	}
	opts = normalizeOptions(opts)
	return &Service{
		signer:   key,
		keyID:    keyID,
		verifier: &key.PublicKey,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		ttl:      opts.TokenTTL,
		leeway:   opts.Leeway,
	}
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Custom map[string]any `json:"claims,omitempty"`
}

// CreateCustomToken signs a token for uid. The custom claim map is embedded
// verbatim; claims changed after issue only apply to later tokens, matching
// the provider contract.
func (s *Service) CreateCustomToken(uid string, custom map[string]any) (string, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", errors.New("identity: uid required")
	}
	now := time.Now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        randomHexID(12),
		},
		Custom: custom,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keyID
	return token.SignedString(s.signer)
}

// VerifyToken validates a bearer token and returns its claims.
func (s *Service) VerifyToken(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}
	claims := tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) != s.keyID {
			return nil, errors.New("unknown token key")
		}
		return s.verifier, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	uid := strings.TrimSpace(claims.Subject)
	if uid == "" {
		return Claims{}, fmt.Errorf("%w: subject missing", ErrInvalidToken)
	}
	admin, _ := claims.Custom["admin"].(bool)
	return Claims{UID: uid, Admin: admin, Custom: claims.Custom}, nil
}

// MinPasswordLength is the required length for new passwords.
const MinPasswordLength = 8

// ErrPasswordTooShort is returned when a new password fails the length rule.
var ErrPasswordTooShort = fmt.Errorf("identity: password must be at least %d characters", MinPasswordLength)

// ValidatePassword enforces the password policy for new passwords.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func parseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("invalid pem")
	}
	if pkcs1, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return pkcs1, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	privateKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not rsa")
	}
	return privateKey, nil
}

func randomHexID(nBytes int) string {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", buf)
}

func normalizeOptions(opts Options) Options {
	opts.Issuer = strings.TrimSpace(opts.Issuer)
	opts.Audience = strings.TrimSpace(opts.Audience)
	if opts.Issuer == "" {
		opts.Issuer = defaultIssuer
	}
	if opts.Audience == "" {
		opts.Audience = defaultAudience
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.Leeway <= 0 {
		opts.Leeway = defaultLeeway
	}
	return opts
}
