package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/authz"
	"github.com/uttaradit-pharmacy/edextemp/internal/db"
	"github.com/uttaradit-pharmacy/edextemp/internal/i18n"
	"github.com/uttaradit-pharmacy/edextemp/internal/printing"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
	"github.com/uttaradit-pharmacy/edextemp/internal/session"
	"gorm.io/gorm"
)

const (
	defaultAuthTokenTTL = 12 * time.Hour
	loginAttemptLimit   = 5
	loginAttemptWindow  = 15 * time.Minute
)

type Handler struct {
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	tokenTTL     time.Duration
	now          func() time.Time

	i18n         *i18n.Manager
	sessions     *session.Manager
	authorizer   *authz.Authorizer
	renderer     *printing.Renderer
	metrics      *Metrics
	metricsRoute string
	loginLimiter *attemptLimiter

	authService      *services.AuthService
	userService      *services.UserService
	formulaService   *services.FormulaService
	prepService      *services.PrepService
	dashboardService *services.DashboardService
	historyService   *services.HistoryService
	exportService    *services.ExportService
}

// Dependencies collects what the HTTP layer needs from the process.
// Metrics and Now are optional.
type Dependencies struct {
	Database     *gorm.DB
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	TokenTTL     time.Duration
	I18n         *i18n.Manager
	Sessions     *session.Manager
	Renderer     *printing.Renderer
	Metrics      *Metrics
	MetricsPath  string
	Now          func() time.Time
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Database == nil {
		return nil, errors.New("database is required")
	}
	if deps.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("print renderer is required")
	}

	location := deps.Location
	if location == nil {
		location = time.Local
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	tokenTTL := deps.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultAuthTokenTTL
	}

	authorizer, err := authz.New()
	if err != nil {
		return nil, err
	}

	repositories := db.NewRepositories(deps.Database)
	authService := services.NewAuthService(repositories.Users)
	historyService := services.NewHistoryService(repositories.Preps, repositories.Formulas, location)

	prepOptions := []services.PrepServiceOption{services.WithPrepClock(now)}
	if deps.Metrics != nil {
		prepOptions = append(prepOptions, services.WithPrepCreatedHook(deps.Metrics.observePrepCreated))
	}

	return &Handler{
		secretKey:    []byte(deps.SecretKey),
		location:     location,
		cookieSecure: deps.CookieSecure,
		tokenTTL:     tokenTTL,
		now:          now,

		i18n:         deps.I18n,
		sessions:     deps.Sessions,
		authorizer:   authorizer,
		renderer:     deps.Renderer,
		metrics:      deps.Metrics,
		metricsRoute: deps.MetricsPath,
		loginLimiter: newAttemptLimiter(),

		authService:      authService,
		userService:      services.NewUserService(repositories.Users, repositories.Preps),
		formulaService:   services.NewFormulaService(repositories.Formulas, authService),
		prepService:      services.NewPrepService(repositories.Preps, repositories.Formulas, authorizer, location, prepOptions...),
		dashboardService: services.NewDashboardService(repositories.Preps, location),
		historyService:   historyService,
		exportService:    services.NewExportService(historyService, deps.I18n),
	}, nil
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
