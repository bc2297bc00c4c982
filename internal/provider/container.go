package provider

import (
	"github.com/rafflehouse-next/internal/cache"
	"github.com/rafflehouse-next/internal/config"
	"github.com/rafflehouse-next/internal/crm/intercom"
	"github.com/rafflehouse-next/internal/logger"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/payment/threeds"
	"github.com/rafflehouse-next/internal/queue"
	"github.com/rafflehouse-next/internal/repository"
	"github.com/rafflehouse-next/internal/service"
	"github.com/rafflehouse-next/internal/track/facebook"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo        repository.UserRepository
	PrizeRepo       repository.PrizeRepository
	CompetitionRepo repository.CompetitionRepository
	OrderRepo       repository.OrderRepository
	CreditRepo      repository.CreditRepository
	CouponRepo      repository.CouponRepository
	SettingRepo     repository.SettingRepository

	// Services
	SettingService    *service.SettingService
	EmailService      *service.EmailService
	UserAuthService   *service.UserAuthService
	PricingService    *service.PricingService
	TicketService     *service.TicketService
	CreditService     *service.CreditService
	CouponService     *service.CouponService
	OrderService      *service.OrderService
	SettlementService *service.SettlementService
	ReceiptService    *service.ReceiptService

	// 外部客户端
	ThreeDSConfig  *threeds.Config
	IntercomClient *intercom.Client
	FacebookClient *facebook.Client
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	// 3. 初始化外部客户端
	c.initClients()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.PrizeRepo = repository.NewPrizeRepository(db)
	c.CompetitionRepo = repository.NewCompetitionRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CreditRepo = repository.NewCreditRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.PricingService = service.NewPricingService()
	c.TicketService = service.NewTicketService()
	c.CreditService = service.NewCreditService(c.CreditRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.PrizeRepo, c.TicketService)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.PrizeRepo,
		c.CompetitionRepo,
		c.CouponRepo,
		c.CreditRepo,
		c.PricingService,
		c.TicketService,
		c.SettingService,
		c.QueueClient,
	)
	c.SettlementService = service.NewSettlementService(
		c.OrderRepo,
		c.PrizeRepo,
		c.UserRepo,
		c.CreditRepo,
		c.CreditService,
		c.CouponService,
		c.TicketService,
		c.SettingService,
		c.QueueClient,
	)
	c.ReceiptService = service.NewReceiptService(c.OrderRepo, c.UserRepo, c.EmailService, c.UserAuthService, c.Config.App.WebURL)
}

func (c *Container) initClients() {
	c.ThreeDSConfig = threeds.NewConfig(c.Config.ThreeDS.BaseURL, c.Config.ThreeDS.APIKey, c.Config.ThreeDS.TimeoutSeconds)
	if err := threeds.ValidateConfig(c.ThreeDSConfig); err != nil {
		logger.Warnw("provider_threeds_config_incomplete", "error", err)
	}
	c.IntercomClient = intercom.NewClient(intercom.Config{
		Enabled:        c.Config.Intercom.Enabled,
		BaseURL:        c.Config.Intercom.BaseURL,
		Token:          c.Config.Intercom.Token,
		TimeoutSeconds: c.Config.Intercom.TimeoutSeconds,
	})
	c.FacebookClient = facebook.NewClient(facebook.Config{
		Enabled:        c.Config.Facebook.Enabled,
		BaseURL:        c.Config.Facebook.BaseURL,
		PixelID:        c.Config.Facebook.PixelID,
		AccessToken:    c.Config.Facebook.AccessToken,
		APIVersion:     c.Config.Facebook.APIVersion,
		TimeoutSeconds: c.Config.Facebook.TimeoutSeconds,
	})
}
