package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/seatwatch"
)

func main() {
	// start mock seat-map server (see mock_server.go)
	go StartMockSeatServer(":9999")
	time.Sleep(100 * time.Millisecond)

	target, err := seatwatch.NewTarget("Demo Hall",
		"http://localhost:9999/v1/events/4821/seats?key=pk_demo",
		seatwatch.WithQuery("count:seats[3]=SOLD"),
		seatwatch.WithTimeout(5*time.Second),
	)
	if err != nil {
		slog.Error("failed to create target", "error", err)
		os.Exit(1)
	}

	w, err := seatwatch.New(
		seatwatch.WithTarget(target),
		seatwatch.WithInterval(5*time.Second),
		seatwatch.WithStatusPort(8080),
	)
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   SeatWatch Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Watching a mock seat map every 5 seconds:           ║")
	fmt.Println("  ║   seats sell (and occasionally free up) over time.    ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Status page: http://localhost:8080                  ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		slog.Error("seatwatch error", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	w.Stop()
}
