// ABOUTME: Error taxonomy of the backend client
// ABOUTME: Sentinels for errors.Is plus APIError for server-provided messages

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps transport failures (connection refused, DNS, reset)
	ErrNetwork = errors.New("network error")
	// ErrCanceled is returned when the caller's context was canceled
	ErrCanceled = errors.New("request canceled")
	// ErrTimeout is returned when the request deadline was exceeded
	ErrTimeout = errors.New("request timed out")
	// ErrUnexpectedFormat is returned for non-JSON error bodies and
	// undecodable success bodies
	ErrUnexpectedFormat = errors.New("unexpected response format")
	// ErrSessionExpired is returned when a token refresh was rejected. The
	// stored tokens have been cleared.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoToken is returned by authenticated calls when no access token is stored
	ErrNoToken = errors.New("no access token")
)

// APIError is a non-2xx response carrying a JSON {"error": ...} body
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status of an APIError, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// UserMessage renders err as the French message shown to users
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("Erreur %d", apiErr.StatusCode)
	case errors.Is(err, ErrSessionExpired):
		return "Session expirée. Veuillez vous reconnecter."
	case errors.Is(err, ErrNoToken):
		return "Aucun token trouvé. Veuillez vous connecter."
	case errors.Is(err, ErrTimeout):
		return "Le serveur ne répond pas. Réessayez plus tard."
	case errors.Is(err, ErrCanceled):
		return "Requête annulée."
	case errors.Is(err, ErrNetwork):
		return "Erreur réseau. Vérifiez votre connexion."
	case errors.Is(err, ErrUnexpectedFormat):
		return "Réponse inattendue du serveur."
	default:
		return "Une erreur est survenue."
	}
}
