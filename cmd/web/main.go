package main

import (
	"log/slog"
	"os"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/app"
	apierrors "github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/errors"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(apierrors.ExitCode(apierrors.NewConfigError("initialize application", err)))
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
