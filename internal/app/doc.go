// Package app wires the compliance checker web service together: it loads
// configuration, initializes logging and OpenTelemetry, builds the services
// and handlers, and runs the HTTP server until SIGINT or SIGTERM.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, COMPLIANCE_* environment)
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Create the result store, compliance service and health service
//	4. Build the chi router with the middleware chain and handlers
//	5. Start the result janitor and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
