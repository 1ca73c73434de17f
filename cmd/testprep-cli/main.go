package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"testprep-app/internal/config"
	"testprep-app/internal/studentclient"
)

func main() {
	cfg := config.Load()

	student := flag.String("student", cfg.Student, "student name")
	server := flag.String("server", cfg.ServerURL, "testprep-service base URL")
	offline := flag.String("offline", "", "run offline from a local test-bank JSON file")
	testID := flag.String("test", "", "test to start in offline mode (default: first in file)")
	flag.Parse()

	ctx := context.Background()

	var err error
	if *offline != "" {
		err = studentclient.RunOffline(ctx, os.Stdin, os.Stdout, *offline, *testID)
	} else {
		err = studentclient.Run(ctx, os.Stdin, os.Stdout, studentclient.Config{
			Student:     *student,
			ServerURL:   *server,
			HTTPTimeout: cfg.HTTPTimeout,
		})
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
