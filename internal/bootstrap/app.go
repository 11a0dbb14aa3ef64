package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"ocr-desk/internal/config"
	"ocr-desk/internal/diagnostics"
	"ocr-desk/internal/domain"
	"ocr-desk/internal/ocrclient"
	"ocr-desk/internal/submission"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// submissionEventName is the runtime event the frontend listens on.
const submissionEventName = "submission:event"

var imageDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Images",
		Pattern: strings.Join(lo.Map(submission.ImageExtensions, func(ext string, _ int) string {
			return "*" + ext
		}), ";"),
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App wires configuration, the submission controller, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Controller  *submission.Controller
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	log         *slog.Logger

	mu         sync.Mutex
	events     *submission.EventBus
	runtimeCtx context.Context
	openFile   func(ctx context.Context, opts wailsruntime.OpenDialogOptions) (string, error)
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.WithEnv(config.NewJSONStore(filepath.Join(homeDir, ".ocr-desk", "settings.json")))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	logger := slog.Default()
	checker := diagnostics.NewChecker()
	report := checker.Run(settings)
	if report.HasFailures {
		logger.Warn("app.diagnostics.failed", "service_url", report.ServiceURL)
	}

	return &App{
		Settings:    settings,
		Store:       store,
		Controller:  submission.NewController(newExtractor(settings, logger)),
		Diagnostics: report,
		assets:      assets,
		checker:     checker,
		log:         logger,
		events:      submission.NewEventBus(200),
		openFile:    wailsruntime.OpenFileDialog,
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "OCR Desk",
		Width:       960,
		Height:      760,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for dialogs and push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns service checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	return a.applySettings(normalizeSettings(settings)), nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then points later submissions at them.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.applySettings(normalized)
	return normalized, nil
}

// GetLanguages returns the target language selector entries.
func (a *App) GetLanguages() []domain.LanguageOption {
	return domain.LanguageOptions()
}

// State returns the current form snapshot.
func (a *App) State() domain.Snapshot {
	return a.Controller.Snapshot()
}

// SelectMode switches between file and URL input.
func (a *App) SelectMode(mode string) (domain.Snapshot, error) {
	return a.Controller.SelectMode(domain.InputMode(strings.TrimSpace(mode)))
}

// PickImageFile opens a native file dialog and loads the chosen image.
// Cancelling the dialog leaves the current selection untouched.
func (a *App) PickImageFile() (domain.Snapshot, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return a.Controller.Snapshot(), err
	}

	path, err := a.openFile(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select image",
		Filters: imageDialogFilter,
	})
	if err != nil {
		return a.Controller.Snapshot(), err
	}

	return a.LoadImageFile(path)
}

// LoadImageFile reads an image from path into the file-mode input.
func (a *App) LoadImageFile(path string) (domain.Snapshot, error) {
	file, err := submission.LoadImageFile(path)
	if err != nil {
		return a.Controller.Snapshot(), err
	}
	return a.Controller.SetFileInput(file)
}

// SetImageURL stores the URL-mode input.
func (a *App) SetImageURL(url string) (domain.Snapshot, error) {
	return a.Controller.SetURLInput(url)
}

// SetTargetLanguage stores the optional translation target.
func (a *App) SetTargetLanguage(code string) (domain.Snapshot, error) {
	return a.Controller.SetTargetLanguage(code)
}

// ClearPreview is called by the frontend when the preview image fails to load.
func (a *App) ClearPreview() domain.Snapshot {
	return a.Controller.ClearPreview()
}

// Submit starts one OCR request and returns the pending snapshot immediately.
func (a *App) Submit() (domain.Snapshot, error) {
	req, err := a.Controller.Begin()
	if err != nil {
		snap := a.Controller.Snapshot()
		if submission.IsMissingInput(err) {
			a.publishEvent(submission.Event{
				Type:      submission.EventTypeError,
				Mode:      snap.Mode,
				ErrorKind: domain.ErrorKindMissingInput,
				Message:   err.Error(),
			})
		}
		return snap, err
	}

	mode := req.Input.Mode()
	a.logger().Info("app.submission.start",
		"submission_id", req.ID,
		"mode", mode,
		"target_lang", req.TargetLanguage,
	)
	a.publishEvent(submission.Event{
		SubmissionID: req.ID,
		Type:         submission.EventTypeStatus,
		Mode:         mode,
		State:        domain.SubmissionStatePending,
		Message:      domain.ProcessingPlaceholder,
	})

	go a.runSubmission(context.Background(), req)
	return a.Controller.Snapshot(), nil
}

// SubmissionEvents returns all events with sequence greater than sinceSeq.
func (a *App) SubmissionEvents(sinceSeq int64) []submission.Event {
	return a.events.Since(sinceSeq)
}

// runSubmission dispatches req and maps the outcome to events.
func (a *App) runSubmission(ctx context.Context, req submission.Request) {
	start := time.Now()
	sub := a.Controller.Dispatch(ctx, req)
	mode := req.Input.Mode()

	switch sub.State {
	case domain.SubmissionStateSucceeded:
		a.logger().Info("app.submission.succeeded",
			"submission_id", req.ID,
			"chars", len(sub.Result),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		a.publishEvent(submission.Event{
			SubmissionID: req.ID,
			Type:         submission.EventTypeResult,
			Mode:         mode,
			State:        sub.State,
			Text:         sub.Result,
		})
	case domain.SubmissionStateFailed:
		a.logger().Warn("app.submission.failed",
			"submission_id", req.ID,
			"kind", sub.ErrorKind,
			"message", sub.ErrorMessage,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		a.publishEvent(submission.Event{
			SubmissionID: req.ID,
			Type:         submission.EventTypeError,
			Mode:         mode,
			State:        sub.State,
			ErrorKind:    sub.ErrorKind,
			Message:      sub.ErrorMessage,
		})
	}
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event submission.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, submissionEventName, published)
	}
}

// applySettings swaps the OCR client and reruns diagnostics for settings.
func (a *App) applySettings(settings domain.Settings) domain.DiagnosticReport {
	a.Controller.UseExtractor(newExtractor(settings, a.logger()))

	var report domain.DiagnosticReport
	if a.checker != nil {
		report = a.checker.Run(settings)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.checker != nil {
		a.Diagnostics = report
	}
	return a.Diagnostics
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, errors.New("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

func (a *App) logger() *slog.Logger {
	if a.log == nil {
		return slog.Default()
	}
	return a.log
}

// newExtractor builds the HTTP OCR client for settings.
func newExtractor(settings domain.Settings, logger *slog.Logger) *ocrclient.Client {
	return ocrclient.New(settings.BaseURL,
		ocrclient.WithTimeout(time.Duration(settings.RequestTimeoutSeconds)*time.Second),
		ocrclient.WithLogger(logger),
	)
}

// normalizeSettings trims user inputs and applies the default service address when empty.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.BaseURL = strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/")
	if settings.BaseURL == "" {
		settings.BaseURL = config.DefaultBaseURL
	}
	if settings.RequestTimeoutSeconds < 0 {
		settings.RequestTimeoutSeconds = 0
	}
	return settings
}
