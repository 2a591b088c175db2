// Package http implements the HTTP handlers of the compliance checker.
// Handlers stay thin: they parse the multipart upload and the JSON check
// request, delegate to the services layer and render the result.
//
// # Routes
//
//	GET    /                              embedded upload form
//	POST   /api/workbooks/inspect         multipart "file" -> sheets and columns
//	POST   /api/compliance/check          multipart "file" + "request" -> previews
//	GET    /api/compliance/downloads/{id} annotated workbook
//	DELETE /api/compliance/downloads/{id} discard before expiry
//	GET    /api/health[/live|/ready]      health probes
//	GET    /api/version                   build information
//	GET    /metrics                       Prometheus exposition
//
// # Error Handling
//
// All errors are rendered as RFC 7807 problem details by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/workbook/unsupported-type",
//	    "title": "Unsupported Media Type",
//	    "status": 415,
//	    "detail": "Only .xlsx workbooks are supported",
//	    "instance": "/api/compliance/check",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest and a testify mock of
// ComplianceServiceInterface.
package http
