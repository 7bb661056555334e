// Package middleware provides the HTTP middleware of the API: bearer-token
// authentication, request ids, request logging and rate limiting.
package middleware

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTenantClaim names the claim carrying the caller's tenant.
const DefaultTenantClaim = "tenant_id"

// JWTClaims holds the parsed claims from a validated JWT.
type JWTClaims struct {
	Subject  string
	Issuer   string
	Audience []string
	Nickname string
	TenantID string
	Raw      map[string]interface{}
}

// JWTValidator validates a JWT token and returns the parsed claims.
type JWTValidator interface {
	Validate(ctx context.Context, tokenString string) (*JWTClaims, error)
}

// OIDCValidator validates JWTs using OIDC discovery or a JWKS endpoint.
type OIDCValidator struct {
	verifier       *oidc.IDTokenVerifier
	allowedIssuers map[string]bool
	tenantClaim    string
}

// HS256Validator validates JWTs signed with a shared HS256 secret.
type HS256Validator struct {
	secret      []byte
	tenantClaim string
}

// NewOIDCValidator creates a validator from an OIDC issuer URL.
func NewOIDCValidator(ctx context.Context, issuerURL, audience, tenantClaim string, allowedIssuers []string) (*OIDCValidator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: audience})
	return &OIDCValidator{
		verifier:       verifier,
		allowedIssuers: issuerSet(issuerURL, allowedIssuers),
		tenantClaim:    claimName(tenantClaim),
	}, nil
}

// NewOIDCValidatorFromJWKS creates a validator from a JWKS URL without discovery.
func NewOIDCValidatorFromJWKS(ctx context.Context, jwksURL, issuerURL, audience, tenantClaim string, allowedIssuers []string) *OIDCValidator {
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	verifier := oidc.NewVerifier(issuerURL, keySet, &oidc.Config{ClientID: audience})
	return &OIDCValidator{
		verifier:       verifier,
		allowedIssuers: issuerSet(issuerURL, allowedIssuers),
		tenantClaim:    claimName(tenantClaim),
	}
}

// NewHS256Validator creates a validator for tokens issued by this service.
func NewHS256Validator(secret, tenantClaim string) (*HS256Validator, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	return &HS256Validator{secret: []byte(secret), tenantClaim: claimName(tenantClaim)}, nil
}

// Validate verifies the JWT against the provider's keys and issuer allowlist.
func (v *OIDCValidator) Validate(ctx context.Context, tokenString string) (*JWTClaims, error) {
	idToken, err := v.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if len(v.allowedIssuers) > 0 && !v.allowedIssuers[idToken.Issuer] {
		return nil, fmt.Errorf("issuer %q not in allowed list", idToken.Issuer)
	}

	var raw map[string]interface{}
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	claims := &JWTClaims{
		Subject:  idToken.Subject,
		Issuer:   idToken.Issuer,
		Audience: idToken.Audience,
		Raw:      raw,
	}
	fillProfile(claims, raw, v.tenantClaim)
	return claims, nil
}

// Validate verifies a JWT signed with HS256 and extracts claims.
func (v *HS256Validator) Validate(_ context.Context, tokenString string) (*JWTClaims, error) {
	tok, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	raw, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("parse claims: unsupported claim type %T", tok.Claims)
	}

	claims := &JWTClaims{Raw: map[string]interface{}(raw)}
	claims.Subject, _ = raw["sub"].(string)
	claims.Issuer, _ = raw["iss"].(string)
	switch aud := raw["aud"].(type) {
	case string:
		claims.Audience = []string{aud}
	case []interface{}:
		for _, a := range aud {
			if s, ok := a.(string); ok {
				claims.Audience = append(claims.Audience, s)
			}
		}
	}
	fillProfile(claims, raw, v.tenantClaim)
	return claims, nil
}

func fillProfile(c *JWTClaims, raw map[string]interface{}, tenantClaim string) {
	c.TenantID, _ = raw[tenantClaim].(string)
	if nick, ok := raw["nickname"].(string); ok {
		c.Nickname = nick
	} else if name, ok := raw["name"].(string); ok {
		c.Nickname = name
	}
}

func issuerSet(issuerURL string, allowed []string) map[string]bool {
	issuers := make(map[string]bool, len(allowed))
	for _, iss := range allowed {
		issuers[iss] = true
	}
	if len(issuers) == 0 && issuerURL != "" {
		issuers[issuerURL] = true
	}
	return issuers
}

func claimName(name string) string {
	if name == "" {
		return DefaultTenantClaim
	}
	return name
}
