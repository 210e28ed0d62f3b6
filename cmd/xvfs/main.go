package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/autobrr/xvfs/internal/config"
	"github.com/autobrr/xvfs/internal/diagnostics"
	"github.com/autobrr/xvfs/internal/mount"
	"github.com/autobrr/xvfs/internal/volume"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// translateDOSFlags rewrites the original's single-slash flags (/d, /l,
// /h) to their long cobra equivalents before argument parsing, so both
// calling conventions work.
func translateDOSFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch a {
		case "/d":
			out = append(out, "--debug")
		case "/l":
			out = append(out, "--launch")
		case "/h":
			out = append(out, "--help")
		default:
			out = append(out, a)
		}
	}
	return out
}

func newRootCmd() *cobra.Command {
	var debug bool
	var launch bool

	cmd := &cobra.Command{
		Use:   "xvfs <iso_file> <mount_path>",
		Short: "Mount a read-only Xbox DVD (XDVDFS) disc image as a filesystem",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMount(args[0], args[1], debug, launch)
		},
	}
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "print debug output")
	cmd.Flags().BoolVarP(&launch, "launch", "l", false, "open a file manager window on the mount path once mounted")
	cmd.SetArgs(translateDOSFlags(os.Args[1:]))

	cmd.AddCommand(newUpdateCmd())
	return cmd
}

func runMount(isoPath, mountPath string, debug, launch bool) error {
	if err := validateArgs(isoPath, mountPath); err != nil {
		return err
	}

	if debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	vol, err := volume.Open(isoPath)
	if err != nil {
		return fmt.Errorf("failed to read %s as an Xbox ISO image: %w", isoPath, err)
	}
	defer vol.Close()

	if debug {
		fmt.Fprint(os.Stderr, diagnostics.Report(vol))
	}

	if launch {
		go launchFileManager(mountPath)
	}

	opts := config.Default(isoPath, mountPath)
	opts.Debug = debug
	opts.Launch = launch
	return mount.Run(vol, opts)
}

func validateArgs(isoPath, mountPath string) error {
	info, err := os.Stat(isoPath)
	if err != nil {
		return fmt.Errorf("%s must exist: %w", isoPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s must be a file, not a directory", isoPath)
	}

	if _, err := os.Stat(mountPath); err == nil {
		return fmt.Errorf("%s already exists; choose an unused mount path", mountPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking mount path %s: %w", mountPath, err)
	}

	return nil
}

// launchFileManager opens a host file-manager window on mountPath once the
// mount has had time to become visible. The host FS bridge and any GUI
// convenience around it are external collaborators outside this program's
// core; this is a best-effort call only.
func launchFileManager(mountPath string) {
	time.Sleep(500 * time.Millisecond)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", mountPath)
	case "windows":
		cmd = exec.Command("explorer", mountPath)
	default:
		cmd = exec.Command("xdg-open", mountPath)
	}
	_ = cmd.Start()
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update xvfs to the latest release",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd.Context())
		},
	}
}

func runSelfUpdate(ctx context.Context) error {
	if version == "" || version == "dev" {
		return errors.New("self-update is only available in release builds")
	}

	if _, err := semver.ParseTolerant(version); err != nil {
		return fmt.Errorf("could not parse version: %w", err)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug("autobrr/xvfs"))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for autobrr/xvfs %s could not be found from github repository", version)
	}

	if latest.LessOrEqual(version) {
		fmt.Printf("Current binary is the latest version: %s\n", version)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	fmt.Printf("Successfully updated to version: %s\n", latest.Version())
	return nil
}
