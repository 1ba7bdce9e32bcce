package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"

	"gait-analysis/pose"
	"gait-analysis/utils"
)

func main() {
	err := utils.CreateFolder("tmp")
	if err != nil {
		logger := utils.GetLogger()
		err := xerrors.New(err)
		ctx := context.Background()
		logger.ErrorContext(ctx, "Failed create tmp dir.", slog.Any("error", err))
	}

	if len(os.Args) < 2 {
		fmt.Println("Expected 'serve' subcommand")
		os.Exit(1)
	}
	_ = godotenv.Load()

	switch os.Args[1] {
	case "serve":
		// Check for the pose estimator service before starting
		estimator := pose.NewEstimatorClient(utils.GetEnv("ESTIMATOR_SERVICE_URL", "http://localhost:5002"))
		if err := estimator.HealthCheck(); err != nil {
			log.Printf("WARNING: %v\n", err)
			log.Println("The server will start but video uploads will fail until the pose estimator is reachable.")
		} else {
			log.Println("Pose estimator service is available")
		}

		serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
		protocol := serveCmd.String("proto", "http", "Protocol to use (http or https)")
		port := serveCmd.String("p", "5000", "Port to use")
		serveCmd.Parse(os.Args[2:])
		serve(*protocol, *port)
	default:
		fmt.Println("Expected 'serve' subcommand")
		os.Exit(1)
	}
}
