package router

import (
	"net/http"

	admsvc "github.com/brettericmartin/tee-club-grid-sub013/internal/application/admission"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/analytics"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/audit"
	authsvc "github.com/brettericmartin/tee-club-grid-sub013/internal/application/auth"
	emailsvc "github.com/brettericmartin/tee-club-grid-sub013/internal/application/emails"
	invsvc "github.com/brettericmartin/tee-club-grid-sub013/internal/application/invites"
	redsvc "github.com/brettericmartin/tee-club-grid-sub013/internal/application/redemption"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/application/scoring"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/config"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/infrastructure/database"
	authhandler "github.com/brettericmartin/tee-club-grid-sub013/internal/interfaces/handlers/auth"
	healthhandler "github.com/brettericmartin/tee-club-grid-sub013/internal/interfaces/handlers/health"
	invhandler "github.com/brettericmartin/tee-club-grid-sub013/internal/interfaces/handlers/invites"
	wlhandler "github.com/brettericmartin/tee-club-grid-sub013/internal/interfaces/handlers/waitlist"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/middleware"
	"github.com/brettericmartin/tee-club-grid-sub013/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// rubricFor builds the scoring config from the default rubric plus env overrides.
func rubricFor(cfg *config.Config) scoring.Config {
	rubric := scoring.Default()
	if cfg.AutoApproveThreshold > 0 {
		rubric.AutoApproveThreshold = cfg.AutoApproveThreshold
	}
	if cfg.CapacityBuffer > 0 {
		rubric.CapacityBuffer = cfg.CapacityBuffer
	}
	return rubric
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, redisClient, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redisClient
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	app.Use(func(c *fiber.Ctx) error {
		user := c.Locals("user")
		if user == nil {
			c.Locals("user", nil)
		}
		return c.Next()
	})

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if errMig := database.AutoMigrate(db); errMig != nil {
			return nil, nil, nil, errMig
		}
		if errLed := admsvc.EnsureLedger(db, cfg.BetaCap); errLed != nil {
			return nil, nil, nil, errLed
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	var profileFinder authsvc.ProfileFinder
	if db != nil {
		profileFinder = &authsvc.GormProfileFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		ProfileFinder: profileFinder,
		Rdb:           rdb,
		Config:        sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil && rdb != nil {
		// Approval/waitlist emails via Brevo (SENDINBLUE_API_KEY, MAIL_FROM).
		var emailSender emailsvc.Sender
		if cfg.SendinblueAPIKey != "" {
			emailSender = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
		}
		sink := &analytics.Sink{Rdb: rdb, Stream: cfg.AnalyticsStream}
		recorder := &audit.Recorder{DB: db}

		as := &admsvc.Service{
			DB:        db,
			Rubric:    rubricFor(cfg),
			Emails:    emailSender,
			Analytics: sink,
			Audit:     recorder,
		}
		rs := &redsvc.Service{DB: db, Emails: emailSender, Analytics: sink, Audit: recorder}

		// Waitlist — public endpoints.
		wh := &wlhandler.Handlers{Admission: as, Redemption: rs}
		wg := app.Group("/api/v1/waitlist")
		wg.Post("/submit", wh.Submit)
		wg.Post("/redeem", wh.Redeem)
		wg.Get("/summary", wh.Summary)

		// Invite codes — admin only.
		is := &invsvc.Service{DB: db}
		ih := &invhandler.Handlers{Service: is}
		ig := app.Group("/api/v1/invites", middleware.RequireAuth())
		ig.Post("/create-code", middleware.AuthorizePermission(constants.ManageInvites), ih.CreateCode)
		ig.Patch("/deactivate-code", middleware.AuthorizePermission(constants.ManageInvites), ih.DeactivateCode)
		ig.Get("/list-codes", middleware.AuthorizePermission(constants.ViewWaitlist), ih.ListCodes)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
