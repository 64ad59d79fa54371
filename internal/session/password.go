package session

// PasswordSource supplies the password held by an unlocked session.
type PasswordSource interface {
	Password() (string, error)
}

// ResolvePassword returns explicit when the caller supplied one, otherwise the session
// password. The session password is used for the current call only.
func ResolvePassword(explicit string, source PasswordSource) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if source == nil {
		return "", ErrLocked
	}
	return source.Password()
}
