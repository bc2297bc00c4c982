package main

import (
	"time"

	"github.com/rafflehouse-next/internal/config"
	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/logger"
	"github.com/rafflehouse-next/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 平台级计价配置
	pricingSetting := models.Setting{
		Key: constants.SettingKeyPricingConfig,
		ValueJSON: models.JSON{
			"is_discount_rates": true,
			"discount_rates": map[string]interface{}{
				constants.PrizeTypeRaffle: []map[string]interface{}{
					{"amount_tickets": 10, "percent": 5},
					{"amount_tickets": 25, "percent": 10},
					{"amount_tickets": 50, "percent": 15},
				},
			},
			"is_credits_rates": true,
			"credits_rates": []map[string]interface{}{
				{"count": 2000, "percent": 5},
				{"count": 5000, "percent": 10},
			},
			"is_free_tickets_rates": true,
			"free_tickets_rates": []map[string]interface{}{
				{"amount_tickets": 20, "free_tickets": 2},
				{"amount_tickets": 40, "free_tickets": 5},
			},
		},
	}
	var existingSetting models.Setting
	if err := models.DB.Where("key = ?", pricingSetting.Key).First(&existingSetting).Error; err != nil {
		if err := models.DB.Create(&pricingSetting).Error; err != nil {
			stdLog.Printf("Failed to create pricing setting: %v", err)
		} else {
			stdLog.Printf("Created pricing setting")
		}
	} else {
		stdLog.Printf("Pricing setting already exists")
	}

	// 奖品
	now := time.Now()
	raffleEnds := now.AddDate(0, 2, 0)
	fixedOddsEnds := now.AddDate(0, 1, 0)

	prizes := []models.Prize{
		{
			Type:        constants.PrizeTypeRaffle,
			Slug:        "dream-home-manchester",
			Title:       "Dream Home in Manchester",
			IsActive:    true,
			TicketPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(2.50)),
			MaxTickets:  0,
			IsDiscountRates: true,
			DiscountRates: models.DiscountRates{
				{AmountTickets: 15, NewPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(2.00)), Percent: decimal.NewFromInt(20)},
				{AmountTickets: 30, NewPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(1.75)), Percent: decimal.NewFromInt(30)},
			},
			IsCreditsActive:    true,
			IsCreditsPermanent: true,
			CreditsRates: models.CreditRates{
				{Count: 1000, Percent: decimal.NewFromInt(5)},
			},
			StartAt: &now,
			EndsAt:  &raffleEnds,
		},
		{
			Type:        constants.PrizeTypePrize,
			Slug:        "rolex-submariner",
			Title:       "Rolex Submariner",
			IsActive:    true,
			TicketPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(4.99)),
			MaxTickets:  5000,
			IsFreeTicketsRates: true,
			FreeTicketsRates: models.FreeTicketRates{
				{AmountTickets: 10, FreeTickets: 1},
				{AmountTickets: 25, FreeTickets: 3},
			},
			StartAt: &now,
		},
		{
			Type:             constants.PrizeTypeFixedOdds,
			Slug:             "instant-win-500",
			Title:            "Instant Win £500",
			IsActive:         true,
			TicketPrice:      models.NewMoneyFromDecimal(decimal.NewFromFloat(0.99)),
			MaxTickets:       2000,
			IsActiveDiscount: true,
			DiscountPrice:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.75)),
			StartAt:          &now,
			EndsAt:           &fixedOddsEnds,
		},
	}

	prizeIDs := map[string]uint{}
	for _, prize := range prizes {
		var existing models.Prize
		if err := models.DB.Where("slug = ?", prize.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prize).Error; err != nil {
				stdLog.Printf("Failed to create prize %s: %v", prize.Slug, err)
				continue
			}
			stdLog.Printf("Created prize: %s", prize.Slug)
			prizeIDs[prize.Slug] = prize.ID
		} else {
			stdLog.Printf("Prize already exists: %s", prize.Slug)
			prizeIDs[prize.Slug] = existing.ID
		}
	}

	// 活动
	competitions := []models.Competition{
		{Type: constants.CompetitionTypeDreamHome, PrizeID: prizeIDs["dream-home-manchester"], IsActive: true, StartAt: &now, EndsAt: &raffleEnds},
		{Type: constants.CompetitionTypePrize, PrizeID: prizeIDs["rolex-submariner"], IsActive: true, StartAt: &now},
		{Type: constants.CompetitionTypeFixedOdds, PrizeID: prizeIDs["instant-win-500"], IsActive: true, StartAt: &now, EndsAt: &fixedOddsEnds},
	}
	for _, competition := range competitions {
		if competition.PrizeID == 0 {
			continue
		}
		var existing models.Competition
		if err := models.DB.Where("type = ? AND prize_id = ?", competition.Type, competition.PrizeID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&competition).Error; err != nil {
				stdLog.Printf("Failed to create competition %s: %v", competition.Type, err)
			} else {
				stdLog.Printf("Created competition: %s", competition.Type)
			}
		} else {
			stdLog.Printf("Competition already exists: %s", competition.Type)
		}
	}

	// 优惠券
	couponEnds := now.AddDate(0, 1, 0)
	rolexID := prizeIDs["rolex-submariner"]
	coupons := []models.Coupon{
		{
			Code:         "WELCOME10",
			Type:         constants.CouponTypeBasket,
			Value:        decimal.NewFromInt(10),
			BasketAmount: 1000,
			IsActive:     true,
			StartsAt:     &now,
			EndsAt:       &couponEnds,
		},
		{
			Code:     "CREDIT500",
			Type:     constants.CouponTypeCredit,
			Value:    decimal.NewFromInt(500),
			IsActive: true,
			StartsAt: &now,
			EndsAt:   &couponEnds,
		},
		{
			Code:     "FREEROLEX",
			Type:     constants.CouponTypePrize,
			Value:    decimal.NewFromInt(1),
			PrizeID:  &rolexID,
			IsActive: true,
			StartsAt: &now,
			EndsAt:   &couponEnds,
		},
	}
	for _, coupon := range coupons {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&coupon).Error; err != nil {
				stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			} else {
				stdLog.Printf("Created coupon: %s", coupon.Code)
			}
		} else {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
		}
	}

	// 演示用户
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("Demo1234!"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}
	demoUser := models.User{
		Email:        "demo@rafflehouse.local",
		PasswordHash: string(passwordHash),
		Name:         "Demo User",
		ReferralKey:  uuid.NewString(),
	}
	var existingUser models.User
	if err := models.DB.Where("email = ?", demoUser.Email).First(&existingUser).Error; err != nil {
		if err := models.DB.Create(&demoUser).Error; err != nil {
			stdLog.Printf("Failed to create demo user: %v", err)
		} else {
			stdLog.Printf("Created demo user: %s", demoUser.Email)
		}
	} else {
		stdLog.Printf("Demo user already exists: %s", demoUser.Email)
	}

	stdLog.Printf("Seed completed")
}
