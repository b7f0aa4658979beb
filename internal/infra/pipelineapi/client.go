// Package pipelineapi is a client for the orchestration backend's v2beta1 REST API.
package pipelineapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/infra/httpclient"
	"github.com/CarterFendley/pipelines/internal/ports"
)

const (
	apiPrefix           = "/apis/v2beta1"
	defaultPollInterval = 5 * time.Second
	listPageSize        = 100
)

// ErrRunTimeout is returned by WaitForRun when the run is still active at the deadline.
var ErrRunTimeout = errors.New("timed out waiting for run completion")

// Client talks to one API host.
type Client struct {
	host         string
	exec         *httpclient.Executor
	namespace    string
	pollInterval time.Duration
	log          *slog.Logger

	healthOnce sync.Once
	multiUser  bool
}

type Option func(*Client)

func WithExecutor(e *httpclient.Executor) Option {
	return func(c *Client) { c.exec = e }
}

// WithNamespace sets the namespace experiments are created in when the API is multi-user.
func WithNamespace(ns string) Option {
	return func(c *Client) { c.namespace = ns }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(host string, opts ...Option) *Client {
	c := &Client{
		host:         strings.TrimRight(host, "/"),
		pollInterval: defaultPollInterval,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.exec == nil {
		c.exec = httpclient.NewExecutor()
	}
	return c
}

var _ ports.PipelineClient = (*Client)(nil)

func (c *Client) Host() string { return c.host }

// HealthzURL is the endpoint a developer can open to check the API is reachable.
func (c *Client) HealthzURL() string {
	return c.host + apiPrefix + "/healthz"
}

// MultiUser reports whether the API runs in multi-user mode. Probe failures count as single-user.
func (c *Client) MultiUser(ctx context.Context) bool {
	c.healthOnce.Do(func() {
		var h apiHealthz
		if err := c.call(ctx, http.MethodGet, "/healthz", nil, nil, &h); err != nil {
			c.log.Warn("pipelineapi.healthz.failed", "url", c.HealthzURL(), "err", err)
			return
		}
		c.multiUser = h.MultiUser
	})
	return c.multiUser
}

func (c *Client) GetExperiment(ctx context.Context, name string) (domain.Experiment, error) {
	f, err := json.Marshal(filter{Predicates: []predicate{{
		Key:         "display_name",
		Operation:   "EQUALS",
		StringValue: name,
	}}})
	if err != nil {
		return domain.Experiment{}, err
	}

	q := url.Values{
		"filter":    {string(f)},
		"page_size": {fmt.Sprint(listPageSize)},
	}
	if c.namespace != "" && c.MultiUser(ctx) {
		q.Set("namespace", c.namespace)
	}

	var out apiListExperiments
	if err := c.call(ctx, http.MethodGet, "/experiments", q, nil, &out); err != nil {
		return domain.Experiment{}, err
	}
	for _, e := range out.Experiments {
		if e.DisplayName == name {
			return toExperiment(e), nil
		}
	}
	return domain.Experiment{}, &domain.OpError{
		Op:   "pipelineapi.get_experiment",
		Kind: domain.KindNotFound,
		Err:  fmt.Errorf("experiment %q: %w", name, domain.ErrNotFound),
	}
}

// EnsureExperiment returns the experiment called name, creating it when missing.
func (c *Client) EnsureExperiment(ctx context.Context, name string) (domain.Experiment, error) {
	exp, err := c.GetExperiment(ctx, name)
	if err == nil {
		return exp, nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return domain.Experiment{}, err
	}

	body := apiExperiment{DisplayName: name}
	if c.MultiUser(ctx) {
		body.Namespace = c.namespace
	}

	var created apiExperiment
	if err := c.call(ctx, http.MethodPost, "/experiments", nil, body, &created); err != nil {
		return domain.Experiment{}, err
	}
	c.log.Info("pipelineapi.experiment.created", "name", name, "id", created.ExperimentID)
	return toExperiment(created), nil
}

func (c *Client) SubmitRun(ctx context.Context, req ports.SubmitRequest) (domain.Run, error) {
	pkg, err := LoadPackage(req.PackagePath)
	if err != nil {
		return domain.Run{}, err
	}
	if req.EnableCaching != nil {
		n := pkg.SetCaching(*req.EnableCaching)
		c.log.Debug("pipelineapi.caching.override", "enabled", *req.EnableCaching, "tasks", n)
	}

	name := req.DisplayName
	if name == "" {
		name = pkg.DisplayName()
	}

	body := apiCreateRun{
		DisplayName:   name,
		ExperimentID:  req.ExperimentID,
		PipelineSpec:  pkg.requestSpec(),
		RuntimeConfig: apiRuntimeConfig{Parameters: dropNil(req.Parameters)},
	}

	var raw json.RawMessage
	if err := c.call(ctx, http.MethodPost, "/runs", nil, body, &raw); err != nil {
		return domain.Run{}, err
	}
	run, err := toRun(raw)
	if err != nil {
		return domain.Run{}, fmt.Errorf("decode created run: %w", err)
	}
	c.log.Info("pipelineapi.run.created", "name", name, "id", run.ID)
	return run, nil
}

func (c *Client) GetRun(ctx context.Context, runID string) (domain.Run, error) {
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/runs/"+url.PathEscape(runID), nil, nil, &raw); err != nil {
		return domain.Run{}, err
	}
	return toRun(raw)
}

// ListRuns returns every run of an experiment, following pagination.
func (c *Client) ListRuns(ctx context.Context, experimentID string) ([]domain.Run, error) {
	var out []domain.Run
	token := ""
	for {
		q := url.Values{
			"experiment_id": {experimentID},
			"page_size":     {fmt.Sprint(listPageSize)},
		}
		if token != "" {
			q.Set("page_token", token)
		}

		var page apiListRuns
		if err := c.call(ctx, http.MethodGet, "/runs", q, nil, &page); err != nil {
			return nil, err
		}
		for _, raw := range page.Runs {
			r, err := toRun(raw)
			if err != nil {
				return nil, fmt.Errorf("decode run: %w", err)
			}
			out = append(out, r)
		}

		if page.NextPageToken == "" {
			return out, nil
		}
		token = page.NextPageToken
	}
}

// WaitForRun polls until the run reaches a terminal state. A zero timeout waits until ctx ends.
func (c *Client) WaitForRun(ctx context.Context, runID string, timeout time.Duration) (domain.Run, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var last domain.Run
	for {
		run, err := c.GetRun(ctx, runID)
		switch {
		case err == nil:
			last = run
			if run.State.IsTerminal() {
				return run, nil
			}
			c.log.Debug("pipelineapi.run.poll", "id", runID, "state", run.State)
		case ctx.Err() == nil:
			return last, err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return last, &domain.OpError{
					Op:   "pipelineapi.wait_for_run",
					Kind: domain.KindExecution,
					Err:  fmt.Errorf("run %s after %s: %w", runID, timeout, ErrRunTimeout),
				}
			}
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) call(ctx context.Context, method, path string, q url.Values, body, out any) error {
	req, err := httpclient.BuildJSONRequest(ctx, method, c.host, apiPrefix+path, q, body)
	if err != nil {
		return err
	}
	if _, err := c.exec.DoJSON(ctx, req, out); err != nil {
		return &domain.OpError{
			Op:   "pipelineapi." + strings.ToLower(method),
			Kind: kindFor(err),
			Err:  err,
		}
	}
	return nil
}

func kindFor(err error) domain.ErrorKind {
	var se *httpclient.StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return domain.KindNotFound
	}
	return domain.KindExecution
}

func dropNil(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if v != nil {
			out[k] = v
		}
	}
	return out
}
