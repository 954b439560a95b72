package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt"
)

// Manager inspects the access tokens the UI layer hands over. The engine
// never mints or stores tokens; it only needs to know whether a usable
// session accompanies a call and who it belongs to.
type Manager struct {
	signingKey string
}

func NewManager(signingKey string) (*Manager, error) {
	if signingKey == "" {
		return nil, errors.New("empty signing key")
	}
	return &Manager{signingKey: signingKey}, nil
}

// Parse validates the token signature and returns its subject.
func (m *Manager) Parse(accessToken string) (string, error) {
	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.signingKey), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// Has reports whether the token carries a currently valid session.
// An empty token is simply "no session", never an error: read paths
// degrade to empty results instead of failing.
func (m *Manager) Has(accessToken string) bool {
	if accessToken == "" {
		return false
	}
	_, err := m.Parse(accessToken)
	return err == nil
}
