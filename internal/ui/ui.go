// Package ui holds the seams toward the presentational shell: toast
// notifications and route navigation. The rendering itself is out of
// scope; flows only ever talk to these interfaces.
package ui

// Route identifies a view in the client's routing table.
type Route string

const (
	RouteHome                   Route = "/"
	RouteTerms                  Route = "/terms"
	RoutePatientLogin           Route = "/patient/login"
	RoutePatientRegister        Route = "/patient/register"
	RoutePatientDashboard       Route = "/patient/dashboard"
	RoutePatientCompleteProfile Route = "/patient/complete-profile"
	RoutePatientRequestService  Route = "/patient/request-service"
	RoutePatientTrackRequest    Route = "/patient/track-request"
	RoutePatientOnlineSupport   Route = "/patient/online-support"
	RoutePatientProfile         Route = "/patient/profile"
	RouteNurseLogin             Route = "/nurse/login"
	RouteNurseRegister          Route = "/nurse/register"
	RouteNurseRegisterInfo      Route = "/nurse/register-info"
	RouteNurseDashboard         Route = "/nurse/dashboard"
	RouteNurseServiceSummary    Route = "/nurse/service-summary"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a toast-style user message.
type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// Navigator switches the active view.
type Navigator interface {
	NavigateTo(route Route)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route Route)

func (f NavigatorFunc) NavigateTo(route Route) { f(route) }

// NopNotifier drops every notification.
var NopNotifier Notifier = NotifierFunc(func(Notification) {})

// NopNavigator ignores every navigation.
var NopNavigator Navigator = NavigatorFunc(func(Route) {})
