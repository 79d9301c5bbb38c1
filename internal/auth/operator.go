package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultOperator is recorded as used_by when a scan arrives without an
// identifiable operator token.
const DefaultOperator = "Admin"

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's
// Authorization header.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// ExtractOperatorFromJWT pulls an operator label out of a scanner's
// token, preferring the human-readable name claim over the subject.
// The gateway in front of this service has already verified the
// signature; here the claims are only used for the audit trail.
func ExtractOperatorFromJWT(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("empty token")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	if name, ok := claims["name"].(string); ok && name != "" {
		return name, nil
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}

	return "", errors.New("no operator identity claim in token")
}

// OperatorFromRequest resolves the operator label for a redemption
// request, falling back to DefaultOperator when no usable token is
// present. Scans must never fail because a gate device lost its token.
func OperatorFromRequest(r *http.Request) string {
	tokenString, err := ExtractTokenFromRequest(r)
	if err != nil {
		return DefaultOperator
	}
	operator, err := ExtractOperatorFromJWT(tokenString)
	if err != nil {
		return DefaultOperator
	}
	return operator
}
