// Package http implements the HTTP handlers of the BikePulse dashboard API.
// Handlers are a thin layer between the chi router and the dashboard service:
// they decode and validate the request, call the service, and render the result.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → DashboardService → pipeline
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Selections
//
// Every view endpoint accepts the same selection parameters:
//
//	year=2011
//	start=2011-01-01&end=2011-06-30
//	season=Spring&season=Fall     (or season=Spring,Fall)
//	workingday=WorkingDay
//
// A missing season or workingday parameter selects every value. A parameter
// given with no value (season=) selects nothing and yields an empty view.
// Query parameters are decoded with mapstructure and validated with
// validator/v10 using the tags registered by middleware.NewValidator.
//
// # Responses
//
// Successful responses use the envelope {"status":"success","data":...}.
// Errors follow RFC 7807 and are produced by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Request validation failed",
//	    "instance": "/api/dashboard/overview"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// DashboardServiceInterface.
package http
