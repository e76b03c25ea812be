//go:build !openxr

package main

import (
	"fmt"
	"log/slog"

	"github.com/galister/overlayd/xr"
)

// newSession is the default build: no XR runtime binding is compiled in
// (OpenXR/OpenVR bindings live outside this module per spec.md §1). A build
// with -tags openxr excludes this file and needs another file of package
// main that defines newSession; none ships in this module.
func newSession(log *slog.Logger) xr.Session {
	log.Warn("no XR runtime backend compiled in; build with -tags openxr")
	return deadSession{}
}

type deadSession struct{}

func (deadSession) WaitFrame() (xr.RawInput, error) {
	return xr.RawInput{}, fmt.Errorf("xr: no runtime backend compiled in (build with -tags openxr)")
}
func (deadSession) BeginFrame() error                                 { return nil }
func (deadSession) EndFrame() error                                   { return nil }
func (deadSession) Submit(overlayID uint64, swapchainImage int) error { return nil }
