// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui renders the terminal side of the sync engine: confirmation
// prompts, transfer progress, alerts and status pages.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

//go:generate mockgen -source=notifier.go -destination=../mock/notifier_mock.go -package=mock

// Notifier is the user-facing collaborator of the sync engine. Confirm is
// the only call that may block on the user.
type Notifier interface {
	Confirm(ctx context.Context, message string) (bool, error)
	ShowProgress(message string)
	UpdateProgress(message string, current, total int)
	HideProgress()
	Alert(message string)
}

// TerminalNotifier asks questions with a small bubbletea program and draws
// progress bars straight to the output.
type TerminalNotifier struct {
	in  io.Reader
	out io.Writer

	mu      sync.Mutex
	bar     progress.Model
	title   string
	showing bool
}

// NewTerminalNotifier returns a notifier bound to stdin and stdout.
func NewTerminalNotifier() *TerminalNotifier {
	return NewTerminalNotifierWithIO(os.Stdin, os.Stdout)
}

// NewTerminalNotifierWithIO returns a notifier bound to in and out.
func NewTerminalNotifierWithIO(in io.Reader, out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{
		in:  in,
		out: out,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (n *TerminalNotifier) Confirm(ctx context.Context, message string) (bool, error) {
	program := tea.NewProgram(
		newConfirmModel(message),
		tea.WithContext(ctx),
		tea.WithInput(n.in),
		tea.WithOutput(n.out),
	)

	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("confirm prompt: %w", err)
	}

	result, ok := final.(confirmModel)
	if !ok {
		return false, tea.ErrProgramKilled
	}
	return result.answer, nil
}

func (n *TerminalNotifier) ShowProgress(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.title = message
	n.showing = true
	fmt.Fprintln(n.out, titleStyle.Render(message))
}

func (n *TerminalNotifier) UpdateProgress(message string, current, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.showing {
		return
	}
	fmt.Fprint(n.out, "\r"+renderProgressLine(n.bar, message, current, total))
}

func (n *TerminalNotifier) HideProgress() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.showing {
		return
	}
	n.showing = false
	fmt.Fprintln(n.out)
}

func (n *TerminalNotifier) Alert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintln(n.out, overlayBoxStyle.Render(errorStyle.Render(message)))
}
