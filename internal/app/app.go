package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/templui/fliptrack/internal/capture"
	"github.com/templui/fliptrack/internal/config"
	"github.com/templui/fliptrack/internal/db"
	"github.com/templui/fliptrack/internal/device"
	"github.com/templui/fliptrack/internal/imaging"
	"github.com/templui/fliptrack/internal/markdown"
	"github.com/templui/fliptrack/internal/permission"
	"github.com/templui/fliptrack/internal/repository"
	"github.com/templui/fliptrack/internal/seed"
	"github.com/templui/fliptrack/internal/service"
	"github.com/templui/fliptrack/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Storage        storage.Storage
	Devices        device.MediaDevices
	Relay          *device.Relay // nil unless CAMERA_DRIVER=relay
	Gateway        *permission.Gateway
	Capture        *capture.Manager
	ProjectService *service.ProjectService
	UpdateService  *service.UpdateService
	ReportService  *service.ReportService
	ShareService   *service.ShareService
	EmailService   *service.EmailService

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Durable preferences
	database, err := db.Open(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// In-memory business state
	data, err := seed.Load(cfg.SeedPath)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load seed data: %w", err)
	}

	projectLatency, updateLatency := repository.NoLatency, repository.NoLatency
	if cfg.StoreLatency {
		projectLatency, updateLatency = repository.ProjectLatency, repository.UpdateLatency
	}

	projectRepository := repository.NewProjectRepository(data.Projects, projectLatency)
	updateRepository := repository.NewUpdateRepository(data.Updates, updateLatency)
	preferenceRepository := repository.NewPreferenceRepository(database)

	// Storage
	photoStorage, err := storage.New(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Media devices
	var devices device.MediaDevices
	var relay *device.Relay
	switch cfg.CameraDriver {
	case "virtual":
		devices = device.NewVirtual()
	case "relay", "":
		relay = device.NewRelay()
		devices = relay
	default:
		database.Close()
		return nil, fmt.Errorf("unknown camera driver %q", cfg.CameraDriver)
	}

	gateway := permission.NewGateway(devices)
	gateway.Init(ctx)

	manager := capture.NewManager(gateway, devices, capture.Options{
		SingleShot: cfg.CaptureSingleShot,
		Codec: imaging.Options{
			Quality:   cfg.ImageQuality,
			MaxWidth:  cfg.ImageMaxWidth,
			MaxHeight: cfg.ImageMaxHeight,
			Format:    imaging.MimeJPEG,
		},
		MaxFileSize: cfg.UploadMaxSize,
	})

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	photoService := service.NewPhotoService(photoStorage)
	projectService := service.NewProjectService(projectRepository, updateRepository, preferenceRepository)
	updateService := service.NewUpdateService(updateRepository, projectRepository, photoService)
	reportService := service.NewReportService(projectRepository, updateRepository, markdown.NewParser(), cfg.ReportDelay, cfg.Location())
	shareService := service.NewShareService(reportService, emailService, cfg.ShareSecret, cfg.ShareLinkExpiry, cfg.AppURL)

	slog.Info("app initialized",
		"projects", len(data.Projects),
		"updates", len(data.Updates),
		"camera", cfg.CameraDriver,
		"storage", cfg.StorageDriver,
		"email", emailService.Enabled(),
	)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Storage:        photoStorage,
		Devices:        devices,
		Relay:          relay,
		Gateway:        gateway,
		Capture:        manager,
		ProjectService: projectService,
		UpdateService:  updateService,
		ReportService:  reportService,
		ShareService:   shareService,
		EmailService:   emailService,
		stop:           make(chan struct{}),
	}, nil
}

// Start runs background maintenance: idle capture sessions are ended after
// CAPTURE_SESSION_TTL.
func (a *App) Start() {
	ttl := a.Cfg.CaptureSessionTTL
	if ttl <= 0 {
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ticker := time.NewTicker(max(ttl/4, time.Second))
		defer ticker.Stop()

		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				n := a.Capture.Prune(ttl)
				if n > 0 {
					slog.Info("pruned idle capture sessions", "count", n)
				}
			}
		}
	}()
}

func (a *App) Close() error {
	a.stopOnce.Do(func() { close(a.stop) })
	a.wg.Wait()

	a.Capture.CloseAll()

	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
