// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package service restarts the device's document service after library
// writes so new documents appear in the document list.
package service

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdiddy/slidegrid/pkg/types"
)

const binSystemctl = "systemctl"

// Restarter restarts a named system service.
type Restarter interface {
	// Name returns the service being restarted.
	Name() string

	// Restart restarts the service. Errors wrap types.ErrSideEffect.
	Restart(ctx context.Context) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// systemd restarts a unit through systemctl.
type systemd struct {
	unit string
	exec executor
}

var defaultExec = &osExecutor{}

// NewSystemd returns a Restarter for the given systemd unit.
func NewSystemd(unit string) Restarter {
	return newSystemd(unit, defaultExec)
}

func newSystemd(unit string, exec executor) *systemd {
	return &systemd{unit: unit, exec: exec}
}

func (s *systemd) Name() string { return s.unit }

func (s *systemd) Restart(ctx context.Context) error {
	if s.unit == "" {
		return fmt.Errorf("%w: no service name configured", types.ErrSideEffect)
	}
	if _, err := s.exec.LookPath(binSystemctl); err != nil {
		return fmt.Errorf("%w: %s not found: %v", types.ErrSideEffect, binSystemctl, err)
	}
	out, err := s.exec.CombinedOutput(ctx, binSystemctl, "restart", s.unit)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: restarting %s: %v: %s", types.ErrSideEffect, s.unit, err, msg)
		}
		return fmt.Errorf("%w: restarting %s: %v", types.ErrSideEffect, s.unit, err)
	}
	return nil
}
