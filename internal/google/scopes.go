package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultOAuthScopes are the Google OAuth scopes requested during authorization.
// Availability checks only list events, so read-only calendar access is enough.
var DefaultOAuthScopes = []string{
	calendar.CalendarReadonlyScope,
}
