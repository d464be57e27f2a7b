// Command coach-sim drives simulated coaching sessions against a running
// service instance and verifies the derived scores it reports.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/simulator"
	"github.com/anja8577/salescoachreplitapp-sub001/pkg/logger"
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		sessions = flag.Int("sessions", 50, "Number of assessment sessions to run")
		workers  = flag.Int("workers", 4, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", 30*time.Second, "HTTP request timeout")
		report   = flag.String("report", "", "Output file for session results")
		logFile  = flag.String("log", "", "Log file for simulation output")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		simulator.ShowHelp()
		return
	}

	if err := simulator.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("failed to set up logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &simulator.Config{
		BaseURL:     *baseURL,
		NumSessions: *sessions,
		Workers:     *workers,
		Timeout:     *timeout,
		ReportFile:  *report,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if err := simulator.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		os.Exit(1)
	}
}
