package auth

import "strings"

// Claims representa la identidad extraída del token (o del header de debug).
// UserID es el actor que queda en changed_by del historial.
type Claims struct {
	UserID   string
	Email    string
	TenantID string
}

func (c Claims) Authenticated() bool {
	return strings.TrimSpace(c.UserID) != ""
}
