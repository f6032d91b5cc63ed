// Package calendar reads events from the Google Calendar API and decides
// whether the calendar's resource is currently reserved.
//
// Client implements EventLister over google.golang.org/api/calendar/v3 and
// expects an *http.Client that already carries the OAuth2 token. Checker
// asks for the next event and applies the busy rule:
//
//	checker := calendar.NewChecker(client, "room@example.com")
//	busy, err := checker.IsBusy(ctx)
package calendar
