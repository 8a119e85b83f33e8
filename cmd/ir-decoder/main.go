package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"irdbclean/internal/config"
	"irdbclean/internal/flipper"
)

func main() {
	cfg, err := config.Load()
	must(err)

	port := flag.String("port", cfg.FlipperPort, "serial port of the device")
	systemDir := flag.String("system-dir", "", "path to the IRDB on this machine")
	flipperDir := flag.String("flipper-dir", cfg.FlipperDir, "path to the IRDB on the device")
	parsedDir := flag.String("parsed-dir", cfg.FlipperParsedDir, "path for decoded files on the device")
	flag.Parse()

	if *port == "" || *systemDir == "" {
		fmt.Fprintln(os.Stderr, "error: --port and --system-dir are required")
		os.Exit(1)
	}

	client, err := flipper.Dial(*port, flipper.ClientOptions{
		BaudRate:          cfg.FlipperBaudRate,
		MaxRetries:        cfg.FlipperMaxRetries,
		CommandsPerSecond: cfg.FlipperCommandRPS,
		Timeout:           time.Duration(cfg.FlipperTimeoutMs) * time.Millisecond,
	})
	must(err)
	defer client.Close()

	if version, err := client.FirmwareVersion(); err == nil && version != "" {
		fmt.Printf("device firmware: %s\n", version)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	decoder := flipper.NewDecoder(client, *systemDir, *flipperDir, *parsedDir, cfg.CloseAppsFrequency,
		time.Duration(cfg.FlipperVerifyTimeMs)*time.Millisecond)
	must(decoder.Run(ctx))

	if len(decoder.Failed) > 0 {
		fmt.Println("\nfailed files:")
		for _, failed := range decoder.Failed {
			fmt.Printf(" - %s\n", failed)
		}
	}
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
