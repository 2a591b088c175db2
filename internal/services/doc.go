// Package services implements the business logic layer of the compliance
// checker. It sits between the HTTP handlers and the workbook and
// classification packages.
//
// # Services
//
//	- ComplianceService: inspects uploads, runs checks, serves downloads
//	- ResultStore: in-memory store of annotated workbooks with expiry
//	- HealthService: liveness, readiness and version reporting
//
// # Error Handling
//
// Services return sentinel errors (ErrResultNotFound, ErrNoSheetsSelected,
// ErrInvalidRequest) or wrap those of the workbook and compliance packages,
// so handlers can map them with errors.Is.
//
// # Testing
//
// Services are tested against fixture workbooks built with excelize and a
// manual OpenTelemetry metric reader:
//
//	meter, reader := testutil.NewTestMeter(t)
//	metrics, _ := infrastructure.CreateBusinessMetrics(meter)
//	svc := NewComplianceService(cfg, NewResultStore(0, metrics, nil), metrics, nil, logger)
package services
