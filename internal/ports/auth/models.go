package auth

import "time"

// Claims representa la información extraída del token.
// UserID es el ID de la identidad (cuenta), no del perfil.
type Claims struct {
	UserID    string
	Username  string
	Email     string
	ExpiresAt time.Time
}
