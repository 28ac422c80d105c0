// Package workspace carries the dependencies of one ncparams invocation and
// persists the working package and values between invocations.
package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"nc-param-manager/internal/common/config"
	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/paramapi"
	"nc-param-manager/internal/parameters"
	"nc-param-manager/internal/presets"
	"nc-param-manager/internal/session"
)

// State is what survives between invocations.
type State struct {
	PackageName string              `json:"packageName"`
	Values      parameters.ValueMap `json:"values"`
}

// Workspace is built once per command by the root command's pre-run hook.
type Workspace struct {
	Config   *config.Config
	Logger   logger.Logger
	Client   *paramapi.Client
	Store    *presets.Store
	Notifier session.Notifier
	// Output is the render format requested with --output: table, json or yaml.
	Output string

	state   presets.Storage
	closers []func() error
}

// Open wires the parameter service client, the preset store and the state
// file from cfg. Notifications go to out.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) (*Workspace, error) {
	store, closeStore, err := presets.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		Config:   cfg,
		Logger:   log,
		Client:   paramapi.New(cfg.ParameterService.BaseURL, cfg.ParameterService.TimeoutDuration(), log),
		Store:    store,
		Notifier: NewWriterNotifier(out),
		Output:   "table",
		state:    presets.NewFileStorage(cfg.Presets.Directory, config.WorkingSetKey),
		closers:  []func() error{closeStore},
	}, nil
}

// Close releases backend connections.
func (w *Workspace) Close() error {
	var first error
	for _, fn := range w.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewSession creates an empty session bound to the workspace services.
func (w *Workspace) NewSession() *session.Session {
	opts := session.Options{
		EnablePresets:      w.Store != nil,
		ValidationDebounce: w.Config.Validation.DebounceDuration(),
		ValidationTimeout:  w.Config.ParameterService.TimeoutDuration(),
	}
	extra := []session.Option{session.WithNotifier(w.Notifier)}
	if w.Store != nil {
		extra = append(extra, session.WithPresetStore(w.Store))
	}
	return session.New(w.Client, w.Logger, opts, extra...)
}

// Resume recreates the session saved by the previous invocation.
func (w *Workspace) Resume(ctx context.Context) (*session.Session, error) {
	st, err := w.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	if st.PackageName == "" {
		return nil, errors.NewPreconditionFailedError("No package loaded; run `ncparams load <package>` first")
	}

	s := w.NewSession()
	if err := s.Restore(ctx, st.PackageName, st.Values); err != nil {
		return nil, err
	}
	s.WaitIdle()
	return s, nil
}

func (w *Workspace) LoadState(ctx context.Context) (State, error) {
	data, err := w.state.Read(ctx)
	if err != nil {
		return State{}, err
	}
	if len(data) == 0 {
		return State{Values: parameters.ValueMap{}}, nil
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode session state: %w", err)
	}
	if st.Values == nil {
		st.Values = parameters.ValueMap{}
	}
	return st, nil
}

// Save waits for pending validations and records the package and values of s.
func (w *Workspace) Save(ctx context.Context, s *session.Session) error {
	s.WaitIdle()
	data, err := json.MarshalIndent(State{PackageName: s.PackageName(), Values: s.Values()}, "", "  ")
	if err != nil {
		return err
	}
	return w.state.Write(ctx, data)
}

type workspaceKey struct{}

func WithWorkspace(ctx context.Context, w *Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey{}, w)
}

// FromContext returns the workspace stored by the root command.
func FromContext(ctx context.Context) (*Workspace, error) {
	if w, ok := ctx.Value(workspaceKey{}).(*Workspace); ok {
		return w, nil
	}
	return nil, fmt.Errorf("workspace not initialized")
}
