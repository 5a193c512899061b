package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// BrowserKind identifies the type of Chromium-based browser.
type BrowserKind string

const (
	BrowserChromium      BrowserKind = "chromium"
	BrowserChromeTesting BrowserKind = "chrome-for-testing"
	BrowserChrome        BrowserKind = "chrome"
	BrowserBrave         BrowserKind = "brave"
	BrowserCustom        BrowserKind = "custom"
)

// BrowserExecutable represents a found browser binary.
type BrowserExecutable struct {
	Kind BrowserKind
	Path string
}

// RunningChrome represents a browser launched with remote debugging.
type RunningChrome struct {
	PID         int
	Executable  *BrowserExecutable
	UserDataDir string
	CDPPort     int
	StartedAt   time.Time
	cmd         *exec.Cmd
}

type candidate struct {
	kind BrowserKind
	path string
}

// FindChromeExecutable finds a browser that can load an unpacked extension.
// Branded Chrome stable ignores --load-extension, so Chromium and Chrome for
// Testing are preferred.
func FindChromeExecutable(customPath string) (*BrowserExecutable, error) {
	if customPath != "" {
		if !fileExists(customPath) {
			return nil, fmt.Errorf("browser executable not found: %s", customPath)
		}
		return &BrowserExecutable{Kind: BrowserCustom, Path: customPath}, nil
	}

	var candidates []candidate
	switch runtime.GOOS {
	case "darwin":
		candidates = macCandidates()
	case "linux":
		candidates = linuxCandidates()
	case "windows":
		candidates = windowsCandidates()
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	for _, c := range candidates {
		if fileExists(c.path) {
			return &BrowserExecutable{Kind: c.kind, Path: c.path}, nil
		}
	}
	return nil, fmt.Errorf("no Chromium-based browser found; set browser.executablePath")
}

func macCandidates() []candidate {
	home := os.Getenv("HOME")
	return []candidate{
		{BrowserChromium, "/Applications/Chromium.app/Contents/MacOS/Chromium"},
		{BrowserChromium, filepath.Join(home, "Applications/Chromium.app/Contents/MacOS/Chromium")},
		{BrowserChromeTesting, "/Applications/Google Chrome for Testing.app/Contents/MacOS/Google Chrome for Testing"},
		{BrowserBrave, "/Applications/Brave Browser.app/Contents/MacOS/Brave Browser"},
		{BrowserChrome, "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"},
	}
}

func linuxCandidates() []candidate {
	return []candidate{
		{BrowserChromium, "/usr/bin/chromium"},
		{BrowserChromium, "/usr/bin/chromium-browser"},
		{BrowserChromium, "/snap/bin/chromium"},
		{BrowserChromeTesting, "/opt/google/chrome-for-testing/chrome"},
		{BrowserBrave, "/usr/bin/brave-browser"},
		{BrowserChrome, "/usr/bin/google-chrome"},
		{BrowserChrome, "/usr/bin/google-chrome-stable"},
	}
}

func windowsCandidates() []candidate {
	localAppData := os.Getenv("LOCALAPPDATA")
	programFiles := os.Getenv("ProgramFiles")
	if programFiles == "" {
		programFiles = `C:\Program Files`
	}

	var out []candidate
	if localAppData != "" {
		out = append(out,
			candidate{BrowserChromium, filepath.Join(localAppData, "Chromium", "Application", "chrome.exe")},
			candidate{BrowserChrome, filepath.Join(localAppData, "Google", "Chrome", "Application", "chrome.exe")},
		)
	}
	return append(out,
		candidate{BrowserBrave, filepath.Join(programFiles, "BraveSoftware", "Brave-Browser", "Application", "brave.exe")},
		candidate{BrowserChrome, filepath.Join(programFiles, "Google", "Chrome", "Application", "chrome.exe")},
	)
}

// IsChromeReachable checks if the CDP HTTP endpoint is responding.
func IsChromeReachable(ctx context.Context, cdpURL string) bool {
	resp, err := getVersion(ctx, cdpURL)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// GetChromeWebSocketURL resolves the browser-level WebSocket debugger URL.
func GetChromeWebSocketURL(ctx context.Context, cdpURL string) (string, error) {
	if strings.HasPrefix(cdpURL, "ws://") || strings.HasPrefix(cdpURL, "wss://") {
		return cdpURL, nil
	}
	resp, err := getVersion(ctx, cdpURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return "", fmt.Errorf("decode /json/version: %w", err)
	}
	if version.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("no webSocketDebuggerUrl in response")
	}
	return version.WebSocketDebuggerURL, nil
}

func getVersion(ctx context.Context, cdpURL string) (*http.Response, error) {
	versionURL := strings.TrimSuffix(cdpURL, "/") + "/json/version"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
	if err != nil {
		return nil, err
	}
	return http.DefaultClient.Do(req)
}

// LaunchChrome starts a browser with remote debugging and the wallet
// extension loaded, and waits for CDP to answer.
func LaunchChrome(ctx context.Context, config *ResolvedConfig) (*RunningChrome, error) {
	if !config.CDPIsLoopback {
		return nil, fmt.Errorf("cdp url %s is remote; cannot launch a local browser", config.CDPUrl)
	}
	if config.ExtensionPath != "" && !fileExists(filepath.Join(config.ExtensionPath, "manifest.json")) {
		return nil, fmt.Errorf("no manifest.json in extension path %s", config.ExtensionPath)
	}

	exe, err := FindChromeExecutable(config.ExecutablePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(config.UserDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create user data dir: %w", err)
	}

	cmd := exec.Command(exe.Path, buildChromeArgs(config)...)
	setChromeProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	running := &RunningChrome{
		PID:         cmd.Process.Pid,
		Executable:  exe,
		UserDataDir: config.UserDataDir,
		CDPPort:     config.CDPPort,
		StartedAt:   time.Now(),
		cmd:         cmd,
	}

	err = WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		probe, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return IsChromeReachable(probe, config.CDPUrl), nil
	}, WithTimeout(15*time.Second), WithInterval(200*time.Millisecond))
	if err != nil {
		killChromeProcessGroup(cmd, true)
		_ = cmd.Wait()
		return nil, fmt.Errorf("browser CDP did not start on port %d: %w", config.CDPPort, err)
	}
	return running, nil
}

// StopChrome stops a launched browser, forcing it after timeout.
func StopChrome(running *RunningChrome, timeout time.Duration) error {
	if running == nil || running.cmd == nil || running.cmd.Process == nil {
		return nil
	}

	killChromeProcessGroup(running.cmd, false)

	done := make(chan error, 1)
	go func() {
		done <- running.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		killChromeProcessGroup(running.cmd, true)
		<-done
		return nil
	}
}

func buildChromeArgs(config *ResolvedConfig) []string {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", config.CDPPort),
		fmt.Sprintf("--user-data-dir=%s", config.UserDataDir),
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-sync",
		"--disable-background-networking",
		"--disable-component-update",
		"--disable-features=Translate,MediaRouter",
		"--disable-session-crashed-bubble",
		"--hide-crash-restore-bubble",
		"--password-store=basic",
	}

	if config.ExtensionPath != "" {
		args = append(args,
			"--disable-extensions-except="+config.ExtensionPath,
			"--load-extension="+config.ExtensionPath,
		)
	}

	if config.Headless {
		args = append(args, "--headless=new", "--disable-gpu")
	}

	if config.NoSandbox {
		args = append(args, "--no-sandbox", "--disable-setuid-sandbox")
	}

	if runtime.GOOS == "linux" {
		args = append(args, "--disable-dev-shm-usage")
	}

	return append(args, "about:blank")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
