package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/config"
	"github.com/neboloop/walletpilot/internal/keyring"
	"github.com/neboloop/walletpilot/internal/logging"
	"github.com/neboloop/walletpilot/internal/tracing"
	"github.com/neboloop/walletpilot/internal/wallet"
)

// loadConfig reads the config file and applies the logging flags.
func loadConfig() (config.Config, *slog.Logger, error) {
	c, err := config.Load(cfgFile)
	if err != nil {
		return c, nil, err
	}
	if screenshots != "" {
		c.Screenshots = screenshots
	}

	level := c.Log.Level
	if verbose {
		level = "debug"
	}
	opts := logging.Options{Level: level, JSON: c.Log.JSON, Writer: os.Stderr}
	if verbose {
		opts.Debug = "*"
	}
	logger := logging.Setup(opts)
	if quiet {
		logging.Disable()
	}
	return c, logger, nil
}

// withSecrets fills secrets missing from the environment from the OS
// keychain.
func withSecrets(c config.Config) (config.Config, error) {
	if !keyring.Available() {
		return c, nil
	}
	fill := func(dst *string, name string) error {
		if *dst != "" {
			return nil
		}
		v, err := keyring.Lookup(name)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
	if err := fill(&c.Wallet.Password, keyring.Password); err != nil {
		return c, err
	}
	if err := fill(&c.Wallet.SecretWords, keyring.SecretWords); err != nil {
		return c, err
	}
	if err := fill(&c.Wallet.PrivateKey, keyring.PrivateKey); err != nil {
		return c, err
	}
	return c, nil
}

// attachConfig points the browser config at the browser started by launch
// unless a CDP URL is configured.
func attachConfig(b browser.Config) browser.Config {
	if b.CDPUrl == "" {
		port := b.CDPPort
		if port == 0 {
			port = browser.DefaultCDPPort
		}
		b.CDPUrl = fmt.Sprintf("http://127.0.0.1:%d", port)
	}
	return b
}

// env is everything a command needs to drive the wallet.
type env struct {
	config   config.Config
	logger   *slog.Logger
	manager  *browser.Manager
	session  *browser.Session
	wallet   *wallet.Wallet
	registry *prometheus.Registry
	tracer   *tracing.Provider
}

// open loads config, attaches to the browser and detects the extension.
// When launch is set the browser is started if nothing answers.
func open(ctx context.Context, launch bool) (*env, error) {
	c, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{config: c, logger: logger, registry: prometheus.NewRegistry()}

	if traceSpans {
		tp, err := tracing.New("walletpilot", os.Stderr)
		if err != nil {
			return nil, err
		}
		e.tracer = tp
	}

	bc := c.Browser
	if !launch {
		bc = attachConfig(bc)
	}
	e.manager = browser.NewManager(bc,
		browser.WithLogger(logging.For("browser")),
		browser.WithMetrics(browser.NewMetrics(e.registry)),
	)
	s, err := e.manager.Start(ctx)
	if err != nil {
		e.close(ctx)
		return nil, err
	}
	e.session = s
	e.wallet = wallet.New(s, wallet.Options{
		Logger:        logger,
		ScreenshotDir: c.Screenshots,
	})
	if !launch {
		if _, err := e.wallet.DetectExtension(ctx); err != nil {
			e.close(ctx)
			return nil, err
		}
	}
	return e, nil
}

// close detaches from the browser. A browser this process launched is
// stopped with it.
func (e *env) close(ctx context.Context) {
	if e.manager != nil {
		if err := e.manager.Stop(); err != nil {
			e.logger.Warn("stop", "error", err)
		}
	}
	if showMetrics {
		printMetrics(e.registry)
	}
	if err := e.tracer.Shutdown(context.WithoutCancel(ctx)); err != nil {
		e.logger.Warn("trace shutdown", "error", err)
	}
}

// withWallet runs fn against an attached wallet.
func withWallet(ctx context.Context, fn func(ctx context.Context, w *wallet.Wallet) error) error {
	e, err := open(ctx, false)
	if err != nil {
		return err
	}
	defer e.close(ctx)
	return fn(ctx, e.wallet)
}

func printMetrics(reg *prometheus.Registry) {
	mfs, err := reg.Gather()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gather metrics: %v\n", err)
		return
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(labels)

			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			}
			fmt.Fprintf(os.Stderr, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
