// Package render drives a headless Chrome session against the upstream
// seed-map site and produces a raw full-page capture for one job.
package render

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jfaulkner/seedshot/internal/mapgen"
	"github.com/jfaulkner/seedshot/internal/metrics"
)

// Selectors and scripts for the optional page furniture. The upstream site
// ships no versioned contract, so these churn; every interaction using them
// is best-effort and a miss only costs a slightly noisier capture.
const (
	consentButtonSelector = ".cc-window .cc-btn.cc-dismiss"
	overlayToggleSelector = "#map-toggle-overlays"

	hideSidebarScript = `(() => {
		const el = document.getElementById('sidebar');
		if (el) { el.style.display = 'none'; }
	})()`
	enableStructureMarkersScript = `(() => {
		const box = document.querySelector('#overlay-panel input[name="structures"]');
		if (box && !box.checked) { box.click(); }
	})()`
)

const (
	defaultNavTimeout     = 45 * time.Second
	defaultSettleDelay    = 12 * time.Second
	defaultStageTimeout   = 5 * time.Second
	defaultCaptureTimeout = 30 * time.Second
	defaultViewport       = 2560
)

// Config controls the behavior of a render session.
type Config struct {
	// BaseURL is the seed-map application page, without fragment.
	BaseURL        string
	UserAgent      string
	NavTimeout     time.Duration
	SettleDelay    time.Duration
	StageTimeout   time.Duration
	CaptureTimeout time.Duration
	// SiteQPS bounds how often any session navigates to the upstream site.
	// Zero disables pacing.
	SiteQPS        float64
	ViewportWidth  int
	ViewportHeight int
}

// Session implements mapgen.Renderer on chromedp. Each Generate call owns a
// fresh browser process released on every exit path.
type Session struct {
	cfg     Config
	logger  *zap.Logger
	limiter *rate.Limiter
}

// New creates a Session, applying defaults for unset knobs.
func New(cfg Config, logger *zap.Logger) (*Session, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = defaultNavTimeout
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = defaultStageTimeout
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = defaultCaptureTimeout
	}
	if cfg.ViewportWidth <= 0 {
		cfg.ViewportWidth = defaultViewport
	}
	if cfg.ViewportHeight <= 0 {
		cfg.ViewportHeight = defaultViewport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.SiteQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SiteQPS), 1)
	}
	metrics.Init()
	return &Session{cfg: cfg, logger: logger, limiter: limiter}, nil
}

// Generate navigates to the map for the given seed and dimension and
// returns a full-page PNG capture.
func (s *Session) Generate(ctx context.Context, seed string, dim mapgen.Dimension) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &mapgen.RenderError{Stage: "launch", Err: fmt.Errorf("site pacing wait: %w", err)}
		}
	}

	start := time.Now()
	defer func() { metrics.ObserveRenderDuration(time.Since(start)) }()

	logger := s.logger.With(zap.String("seed", seed), zap.String("dimension", string(dim)))

	// Stage 1: launch. A dedicated browser per job keeps a wedged render
	// from poisoning later ones.
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer s.teardown(logger, browserCtx, browserCancel, allocCancel)

	if err := chromedp.Run(browserCtx); err != nil {
		metrics.ObserveRenderStage("launch", "failed")
		return nil, &mapgen.RenderError{Stage: "launch", Err: err}
	}
	metrics.ObserveRenderStage("launch", "ok")

	// Stage 2: navigate. The document status is recorded off the wire so a
	// 4xx/5xx from the upstream site shows up in the logs even when the
	// page still renders something.
	var docStatus atomic.Int64
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			docStatus.Store(resp.Response.Status)
		}
	})

	target := s.mapURL(seed, dim)
	navTasks := chromedp.Tasks{
		network.Enable(),
		chromedp.EmulateViewport(int64(s.cfg.ViewportWidth), int64(s.cfg.ViewportHeight)),
	}
	if s.cfg.UserAgent != "" {
		navTasks = append(navTasks, emulation.SetUserAgentOverride(s.cfg.UserAgent))
	}
	navTasks = append(navTasks,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)

	navCtx, navCancel := context.WithTimeout(browserCtx, s.cfg.NavTimeout)
	defer navCancel()
	err := chromedp.Run(navCtx, navTasks)
	if err != nil {
		metrics.ObserveRenderStage("navigate", "failed")
		return nil, &mapgen.RenderError{Stage: "navigate", Err: fmt.Errorf("open %s: %w", target, err)}
	}
	metrics.ObserveRenderStage("navigate", "ok")
	if status := docStatus.Load(); status >= 400 {
		logger.Warn("upstream returned error status", zap.Int64("status", status), zap.String("url", target))
	}

	// Stages 3-5: page furniture, all best-effort.
	s.tryStage(browserCtx, logger, "dismiss_consent",
		chromedp.Click(consentButtonSelector, chromedp.ByQuery, chromedp.NodeVisible))
	s.tryStage(browserCtx, logger, "hide_sidebar",
		chromedp.Evaluate(hideSidebarScript, nil))
	s.tryStage(browserCtx, logger, "enable_markers",
		chromedp.Click(overlayToggleSelector, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.Evaluate(enableStructureMarkersScript, nil))

	// Stage 6: settle. The page exposes no render-complete signal, so a
	// fixed dwell has to stand in for one.
	if err := chromedp.Run(browserCtx, chromedp.Sleep(s.cfg.SettleDelay)); err != nil {
		metrics.ObserveRenderStage("settle", "failed")
		return nil, &mapgen.RenderError{Stage: "settle", Err: err}
	}
	metrics.ObserveRenderStage("settle", "ok")

	// Stage 7: capture.
	var shot []byte
	capCtx, capCancel := context.WithTimeout(browserCtx, s.cfg.CaptureTimeout)
	defer capCancel()
	if err := chromedp.Run(capCtx, chromedp.FullScreenshot(&shot, 100)); err != nil {
		metrics.ObserveRenderStage("capture", "failed")
		return nil, &mapgen.RenderError{Stage: "capture", Err: err}
	}
	metrics.ObserveRenderStage("capture", "ok")

	logger.Debug("capture complete",
		zap.Int("bytes", len(shot)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return shot, nil
}

// tryStage runs optional page interactions under a short timeout. Failures
// are contained: logged, counted, and skipped.
func (s *Session) tryStage(
	browserCtx context.Context,
	logger *zap.Logger,
	name string,
	actions ...chromedp.Action,
) stageOutcome {
	stageCtx, cancel := context.WithTimeout(browserCtx, s.cfg.StageTimeout)
	defer cancel()

	if err := chromedp.Run(stageCtx, actions...); err != nil {
		outcome := skipped(err.Error())
		logger.Debug("optional stage skipped", zap.String("stage", name), zap.String("reason", outcome.reason))
		metrics.ObserveRenderStage(name, "skipped")
		return outcome
	}
	metrics.ObserveRenderStage(name, "ok")
	return applied()
}

// teardown releases the browser unconditionally. Cancel errors are logged
// and swallowed.
func (s *Session) teardown(
	logger *zap.Logger,
	browserCtx context.Context,
	browserCancel, allocCancel context.CancelFunc,
) {
	if err := chromedp.Cancel(browserCtx); err != nil {
		logger.Warn("browser teardown failed", zap.Error(err))
	}
	browserCancel()
	allocCancel()
}

// mapURL builds the upstream fragment URL for a seed and dimension.
func (s *Session) mapURL(seed string, dim mapgen.Dimension) string {
	return fmt.Sprintf("%s#seed=%s&dimension=%s", s.cfg.BaseURL, url.QueryEscape(seed), dim)
}
