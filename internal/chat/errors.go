package chat

import (
	"errors"

	"github.com/lox/weatherchat/internal/agent"
	"github.com/lox/weatherchat/internal/weather"
)

// Message returns the text shown to the user for a failed turn.
func Message(err error, debug bool) string {
	var provErr *agent.ModelProviderError
	if errors.As(err, &provErr) && provErr.StatusCode != 0 {
		switch {
		case provErr.IsAuth():
			return "Authentication error: Invalid API key"
		case provErr.IsRateLimited():
			return "Rate limit exceeded. Please try again later."
		default:
			return "API error: " + provErr.Message
		}
	}

	var resErr *weather.ResolutionError
	if errors.As(err, &resErr) {
		if debug {
			return "Error: " + err.Error()
		}
		return "I couldn't find a single place matching that. Please name a more specific location, like a city and country."
	}

	if debug {
		return "Error: " + err.Error()
	}
	return "An error occurred. Use --debug for more details."
}
