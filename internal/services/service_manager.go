package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/UniFlow-2025/enrollment-service/internal/cache"
	"github.com/UniFlow-2025/enrollment-service/internal/events"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

// ServiceConfig holds the dependencies every service shares.
type ServiceConfig struct {
	RepoManager repositories.RepositoryManager
	RedisClient *redis.Client
	Logger      *slog.Logger
	Validator   *validator.Validator
	Publisher   events.EventPublisher
}

type serviceManager struct {
	config ServiceConfig

	auth       AuthService
	enrollment EnrollmentService
	catalog    CatalogService
	dashboard  DashboardService
	feedback   FeedbackService
	export     ExportService
}

func NewServiceManager(config ServiceConfig) ServiceManager {
	return &serviceManager{config: config}
}

func (m *serviceManager) Initialize(ctx context.Context) error {
	if err := m.config.RepoManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	repo := m.config.RepoManager.GetRepository()

	if m.config.Validator == nil {
		m.config.Validator = validator.New()
	}
	if m.config.Publisher == nil {
		m.config.Publisher = events.NewGoChannelPublisher(m.config.Logger)
	}

	statsCache := cache.NewCacheHelper(m.config.RedisClient, cache.StatsCacheConfig.Prefix)
	flashStore := cache.NewFlashStore(m.config.RedisClient, cache.DefaultFlashTTL)

	m.auth = NewAuthService(repo, m.config.Logger, m.config.Validator, m.config.Publisher)
	m.enrollment = NewEnrollmentService(repo, m.config.Logger, m.config.Validator, m.config.Publisher)
	m.catalog = NewCatalogService(repo, m.config.Logger, m.config.Validator, statsCache)
	m.dashboard = NewDashboardService(repo, m.config.Logger)
	m.feedback = NewFeedbackService(flashStore, m.config.Logger, m.config.Validator)
	m.export = NewExportService(m.enrollment, repo, m.config.Logger)

	m.config.Logger.Info("services initialized")
	return nil
}

func (m *serviceManager) Auth() AuthService             { return m.auth }
func (m *serviceManager) Enrollment() EnrollmentService { return m.enrollment }
func (m *serviceManager) Catalog() CatalogService       { return m.catalog }
func (m *serviceManager) Dashboard() DashboardService   { return m.dashboard }
func (m *serviceManager) Feedback() FeedbackService     { return m.feedback }
func (m *serviceManager) Export() ExportService         { return m.export }

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	if err := m.config.RepoManager.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if m.config.RedisClient != nil {
		if err := m.config.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

func (m *serviceManager) Shutdown(ctx context.Context) error {
	if m.config.Publisher != nil {
		if err := m.config.Publisher.Close(); err != nil {
			m.config.Logger.Error("failed to close event publisher", "error", err)
		}
	}
	return m.config.RepoManager.Shutdown(ctx)
}
