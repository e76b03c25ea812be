// Command overlayd is the daemon entrypoint: parses flags, loads config,
// takes the single-instance lock, wires every subsystem via overlayd.New,
// and drives the XR frame loop until signaled to stop.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/galister/overlayd"
	"github.com/galister/overlayd/config"
	"github.com/galister/overlayd/internal/applog"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml (defaults to $XDG_CONFIG_HOME/overlayd/config.yaml)")
		confDir    = flag.String("conf.d", "", "directory of config.yaml overrides, applied alphabetically")
		statePath  = flag.String("state", "", "path to the saved overlay layout JSON5 file")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
		keyboard   = flag.String("keyboard-layout", "", "path to the keyboard layout YAML")
	)
	flag.Parse()

	level := parseLevel(*logLevel)
	log := applog.New(nil, level)

	paths := resolvePaths(*configPath, *confDir, *statePath)

	lock, err := acquireLock(paths.lockPath)
	if err != nil {
		log.Error("another instance appears to be running", "err", err, "lock", paths.lockPath)
		os.Exit(1)
	}
	defer lock.release()

	cfg, err := config.Load(paths.configPath, paths.confDir)
	if err != nil {
		log.Error("loading config", "err", err)
		os.Exit(1)
	}

	savedState, err := config.LoadState(paths.statePath)
	if err != nil {
		log.Warn("loading saved layout, continuing with defaults", "err", err)
	}

	deps := buildDeps(*keyboard, applog.Component(log, "deps"))
	deps.SavedState = savedState

	app, err := overlayd.New(cfg, deps)
	if err != nil {
		log.Error("starting overlayd", "err", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	log.Info("overlayd started", "config", paths.configPath, "state", paths.statePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	alive := true
	go func() {
		<-sigCh
		log.Info("received shutdown signal")
		alive = false
	}()

	if err := app.RunUntil(func() bool { return alive }); err != nil {
		log.Error("frame loop exited with error", "err", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type paths struct {
	configPath string
	confDir    string
	statePath  string
	lockPath   string
}

func resolvePaths(configFlag, confDirFlag, stateFlag string) paths {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	root := filepath.Join(base, "overlayd")

	p := paths{
		configPath: configFlag,
		confDir:    confDirFlag,
		statePath:  stateFlag,
		lockPath:   filepath.Join(root, "overlayd.lock"),
	}
	if p.configPath == "" {
		p.configPath = filepath.Join(root, "config.yaml")
	}
	if p.confDir == "" {
		p.confDir = filepath.Join(root, "conf.d")
	}
	if p.statePath == "" {
		p.statePath = filepath.Join(root, "state.json5")
	}
	return p
}

// instanceLock holds an exclusive flock on overlayd.lock for the process
// lifetime, refusing to start a second instance against the same config
// directory.
type instanceLock struct {
	f *os.File
}

func acquireLock(path string) (*instanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring exclusive lock: %w", err)
	}
	return &instanceLock{f: f}, nil
}

func (l *instanceLock) release() {
	syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	l.f.Close()
}
