package util

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/multierr"
)

// SetupInterruptHandler quits the browser session on SIGINT/SIGTERM and exits non-zero.
// The returned func stops listening.
func SetupInterruptHandler(session io.Closer, outputDir string) (stop func()) {
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sig:
		case <-done:
			return
		}

		fmt.Println("\nInterrupt received. Cleaning up...")

		if session != nil {
			if err := session.Close(); err != nil {
				fmt.Printf("Error closing browser: %v\n", err)
			}
		}
		RemoveIfEmpty(outputDir)
		fmt.Println("\nExiting due to interrupt.")

		os.Exit(1)
	}()

	return func() {
		signal.Stop(sig)
		close(done)
	}
}

// ResetDir removes dir if present and recreates it empty.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	return nil
}

// RemoveFiles deletes every path, collecting all failures.
func RemoveFiles(paths []string) error {
	var err error
	for _, p := range paths {
		if rerr := os.Remove(p); rerr != nil && !os.IsNotExist(rerr) {
			err = multierr.Append(err, rerr)
		}
	}

	return err
}

func RemoveIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			fmt.Printf("Removed empty output folder: %s\n", dir)
		}
	}
}

// CleanupFolder removes every file of folder and then folder itself when nothing else is left.
func CleanupFolder(folder string) error {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			paths = append(paths, filepath.Join(folder, e.Name()))
		}
	}

	err = RemoveFiles(paths)
	RemoveIfEmpty(folder)

	return err
}
