// Package paramapi is the HTTP client of the remote parameter service.
package paramapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nc-param-manager/internal/common/errors"
	commonhttp "nc-param-manager/internal/common/http"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/common/metrics"
	"nc-param-manager/internal/common/observability"
	"nc-param-manager/internal/common/validation"
	"nc-param-manager/internal/parameters"
	"nc-param-manager/internal/presets"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation names used for metrics, spans and error details.
const (
	OpGetConfig    = "getConfig"
	OpValidate     = "validate"
	OpCalculate    = "calculate"
	OpListPresets  = "listPresets"
	OpSavePreset   = "savePreset"
	OpLoadPreset   = "loadPreset"
	OpDeletePreset = "deletePreset"
)

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Calculated json.RawMessage `json:"calculated,omitempty"`
	Error      string          `json:"error,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// failureMessage picks the user-facing text of a failed envelope.
func (e *envelope) failureMessage(fallback string) string {
	if e.Error != "" {
		return e.Error
	}
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

type Client struct {
	baseURL string
	http    *commonhttp.Client
	tracer  trace.Tracer
	obs     *observability.Observability
	log     logger.Logger
}

type Option func(*Client)

// WithObservability records otel metrics and spans through obs.
func WithObservability(obs *observability.Observability) Option {
	return func(cl *Client) {
		cl.obs = obs
		cl.tracer = obs.Tracer()
	}
}

func New(baseURL string, timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    commonhttp.NewClient(timeout),
		log:     log.Named("paramapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("nc-param-manager/paramapi")
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) packageURL(pkg string, segments ...string) string {
	parts := []string{c.baseURL, "parameters", url.PathEscape(pkg)}
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return strings.Join(parts, "/")
}

// call performs one request and decodes the envelope. Transport failures and
// non-JSON error responses become PARAM_SERVICE_UNAVAILABLE; a decoded
// envelope with success=false becomes PARAM_SERVICE_REJECTED.
func (c *Client) call(ctx context.Context, op, method, target, pkg string, body interface{}) (*envelope, int, error) {
	ctx, span := c.tracer.Start(ctx, "paramapi."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("param.package", pkg),
			attribute.String("http.request.method", method),
		))
	defer span.End()

	start := time.Now()
	resp, err := c.http.DoJSON(ctx, method, target, body)
	elapsed := time.Since(start)
	metrics.ParamServiceDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	outcome := "transport_error"
	defer func() {
		metrics.ParamServiceRequests.WithLabelValues(op, outcome).Inc()
		c.obs.RecordRequest(ctx, op, outcome, elapsed)
	}()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if isTimeout(err) {
			return nil, 0, errors.NewParamServiceTimeoutError(op, err)
		}
		return nil, 0, errors.NewParamServiceUnavailableError(op, err)
	}
	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.String("request.id", resp.RequestID),
	)

	var env envelope
	if decodeErr := json.Unmarshal(resp.Body, &env); decodeErr != nil {
		err := fmt.Errorf("status %d: undecodable response: %w", resp.StatusCode, decodeErr)
		span.SetStatus(codes.Error, err.Error())
		return nil, resp.StatusCode, errors.NewParamServiceUnavailableError(op, err)
	}

	if !env.Success || !resp.OK() {
		outcome = "rejected"
		msg := env.failureMessage(fmt.Sprintf("parameter service %s failed (status %d)", op, resp.StatusCode))
		span.SetStatus(codes.Error, msg)
		c.log.Debug("Parameter service rejected request", map[string]interface{}{
			"operation": op,
			"package":   pkg,
			"status":    resp.StatusCode,
			"requestId": resp.RequestID,
			"message":   msg,
		})
		return &env, resp.StatusCode, errors.NewParamServiceRejectedError(op, msg).
			WithMetadata("status", resp.StatusCode).
			WithMetadata("requestId", resp.RequestID)
	}

	outcome = metrics.ResultSuccess
	return &env, resp.StatusCode, nil
}

func decodeData(op string, raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewParamServiceUnavailableError(op, fmt.Errorf("decode data: %w", err))
	}
	return nil
}

// GetConfig fetches the parameter schema of a template package.
func (c *Client) GetConfig(ctx context.Context, pkg string) (*parameters.Schema, error) {
	env, _, err := c.call(ctx, OpGetConfig, http.MethodGet, c.packageURL(pkg, "config"), pkg, nil)
	if err != nil {
		return nil, err
	}

	schema := &parameters.Schema{}
	if err := decodeData(OpGetConfig, env.Data, schema); err != nil {
		return nil, err
	}
	if schema.Groups == nil {
		schema.Groups = map[string]parameters.Group{}
	}
	return schema, nil
}

type valuesRequest struct {
	Parameters parameters.ValueMap `json:"parameters"`
}

// Validate sends the full value map for validation.
func (c *Client) Validate(ctx context.Context, pkg string, values parameters.ValueMap) (parameters.ValidationState, error) {
	env, _, err := c.call(ctx, OpValidate, http.MethodPost, c.packageURL(pkg, "validate"), pkg, valuesRequest{Parameters: nonNil(values)})
	if err != nil {
		return parameters.ValidationState{}, err
	}

	state := parameters.ValidationState{}
	if err := decodeData(OpValidate, env.Data, &state); err != nil {
		return parameters.ValidationState{}, err
	}
	return state.Normalize(), nil
}

// Calculate returns the derived values, read from "calculated" or, when
// absent, "data".
func (c *Client) Calculate(ctx context.Context, pkg string, values parameters.ValueMap) (parameters.ValueMap, error) {
	env, _, err := c.call(ctx, OpCalculate, http.MethodPost, c.packageURL(pkg, "calculate"), pkg, valuesRequest{Parameters: nonNil(values)})
	if err != nil {
		return nil, err
	}

	raw := env.Calculated
	if len(raw) == 0 || string(raw) == "null" {
		raw = env.Data
	}
	derived := parameters.ValueMap{}
	if err := decodeData(OpCalculate, raw, &derived); err != nil {
		return nil, err
	}
	return derived, nil
}

// ListPresets lists the presets the service stores for pkg.
func (c *Client) ListPresets(ctx context.Context, pkg string) ([]presets.Preset, error) {
	env, _, err := c.call(ctx, OpListPresets, http.MethodGet, c.packageURL(pkg, "presets"), pkg, nil)
	if err != nil {
		return nil, err
	}

	var list []presets.Preset
	if err := decodeData(OpListPresets, env.Data, &list); err != nil {
		return nil, err
	}
	for i := range list {
		list[i].PackageName = pkg
	}
	return list, nil
}

type savePresetRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Parameters  parameters.ValueMap `json:"parameters"`
}

// SavePreset stores a preset on the service. Names the service would reject
// fail locally with PRECONDITION_FAILED.
func (c *Client) SavePreset(ctx context.Context, pkg string, p presets.Preset) error {
	name := strings.TrimSpace(p.Name)
	if !validation.ValidPresetName(name) {
		return errors.NewPreconditionFailedError(fmt.Sprintf("Invalid preset name %q", p.Name))
	}
	body := savePresetRequest{Name: name, Description: p.Description, Parameters: nonNil(p.Parameters)}
	_, _, err := c.call(ctx, OpSavePreset, http.MethodPost, c.packageURL(pkg, "presets"), pkg, body)
	return err
}

// LoadPreset fetches one preset; a 404 maps to PRESET_NOT_FOUND.
func (c *Client) LoadPreset(ctx context.Context, pkg, name string) (presets.Preset, error) {
	env, status, err := c.call(ctx, OpLoadPreset, http.MethodGet, c.packageURL(pkg, "presets", name, "load"), pkg, nil)
	if status == http.StatusNotFound {
		return presets.Preset{}, errors.NewPresetNotFoundError(pkg, name)
	}
	if err != nil {
		return presets.Preset{}, err
	}

	var p presets.Preset
	if err := decodeData(OpLoadPreset, env.Data, &p); err != nil {
		return presets.Preset{}, err
	}
	p.PackageName = pkg
	if p.Name == "" {
		p.Name = name
	}
	if p.Parameters == nil {
		p.Parameters = parameters.ValueMap{}
	}
	return p, nil
}

// DeletePreset removes a preset; a 404 maps to PRESET_NOT_FOUND.
func (c *Client) DeletePreset(ctx context.Context, pkg, name string) error {
	_, status, err := c.call(ctx, OpDeletePreset, http.MethodDelete, c.packageURL(pkg, "presets", name), pkg, nil)
	if status == http.StatusNotFound {
		return errors.NewPresetNotFoundError(pkg, name)
	}
	return err
}

func nonNil(values parameters.ValueMap) parameters.ValueMap {
	if values == nil {
		return parameters.ValueMap{}
	}
	return values
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
