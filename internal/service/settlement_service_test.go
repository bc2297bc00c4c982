package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupSettlementTest(t *testing.T) (*SettlementService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:settlement_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Prize{},
		&models.Competition{},
		&models.Order{},
		&models.Credit{},
		&models.Coupon{},
		&models.CouponRedemption{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	creditRepo := repository.NewCreditRepository(db)
	prizeRepo := repository.NewPrizeRepository(db)
	ticketService := NewTicketService()
	svc := NewSettlementService(
		repository.NewOrderRepository(db),
		prizeRepo,
		repository.NewUserRepository(db),
		creditRepo,
		NewCreditService(creditRepo),
		NewCouponService(repository.NewCouponRepository(db), prizeRepo, ticketService),
		ticketService,
		NewSettingService(repository.NewSettingRepository(db)),
		nil,
	)
	return svc, db
}

func createSettlementUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	user := &models.User{
		ID:           id,
		Email:        fmt.Sprintf("settle_user_%d@example.com", id),
		PasswordHash: "hash",
		ReferralKey:  fmt.Sprintf("ref-%d", id),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createPendingOrder(t *testing.T, db *gorm.DB, userID, prizeID uint, prizeType, groupID string, tickets int, totalCost int64) *models.Order {
	t.Helper()
	order := &models.Order{
		GroupID:       groupID,
		UserID:        userID,
		PrizeID:       prizeID,
		PrizeType:     prizeType,
		Tickets:       NewTicketService().GenerateTickets(tickets),
		NumOfTickets:  tickets,
		TicketPrice:   models.NewMoneyFromPence(totalCost / int64(tickets)),
		TotalCost:     totalCost,
		PaymentStatus: constants.OrderStatusInPaymentProcess,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestVerifySettlesGroupAndIsIdempotent(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	prize := createTestPrize(t, db, constants.PrizeTypeRaffle, "settle-raffle", "2.50")

	expiredAt := time.Now().AddDate(0, 0, 10)
	credit := models.Credit{UserID: user.ID, Amount: 500, HoldAmount: 300, Arrival: constants.CreditArrivalBought, ExpiredAt: &expiredAt}
	if err := db.Create(&credit).Error; err != nil {
		t.Fatalf("create credit failed: %v", err)
	}

	first := createPendingOrder(t, db, user.ID, prize.ID, constants.PrizeTypeRaffle, "group-1", 4, 1000)
	first.SpentCredits = 300
	first.AppliedCredits = models.AppliedCredits{{CreditID: credit.ID, SpentAmount: 300}}
	if err := db.Save(first).Error; err != nil {
		t.Fatalf("update order failed: %v", err)
	}
	createPendingOrder(t, db, user.ID, prize.ID, constants.PrizeTypeRaffle, "group-1", 2, 500)

	result, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-1", CheckoutID: "chk-1", TransactionID: "txn-1"})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.PaidAmount != 1200 {
		t.Fatalf("expected paid amount 1200, got %d", result.PaidAmount)
	}
	if result.TicketCount != 6 {
		t.Fatalf("expected 6 tickets, got %d", result.TicketCount)
	}
	if len(result.OrderIDs) != 2 {
		t.Fatalf("expected 2 settled orders, got %d", len(result.OrderIDs))
	}

	var settled models.Order
	if err := db.First(&settled, first.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if settled.PaymentStatus != constants.OrderStatusAccepted {
		t.Fatalf("expected accepted status, got %s", settled.PaymentStatus)
	}
	if settled.CheckoutID != "chk-1" || settled.TransactionID != "txn-1" {
		t.Fatalf("expected payment references recorded, got %s/%s", settled.CheckoutID, settled.TransactionID)
	}
	if settled.PurchaseDate == nil {
		t.Fatalf("expected purchase date set")
	}

	var spentCredit models.Credit
	if err := db.First(&spentCredit, credit.ID).Error; err != nil {
		t.Fatalf("load credit failed: %v", err)
	}
	if spentCredit.Spent != 300 || spentCredit.HoldAmount != 0 {
		t.Fatalf("expected hold converted to spend, got spent=%d hold=%d", spentCredit.Spent, spentCredit.HoldAmount)
	}

	var settledUser models.User
	if err := db.First(&settledUser, user.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if settledUser.TotalTicketsBought != 6 {
		t.Fatalf("expected 6 total tickets bought, got %d", settledUser.TotalTicketsBought)
	}

	// 重复结算是空操作
	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-1", CheckoutID: "chk-2", TransactionID: "txn-2"}); !errors.Is(err, ErrOrderGroupNotFound) {
		t.Fatalf("expected group not found on repeat verify, got: %v", err)
	}
}

func TestVerifyUnknownGroup(t *testing.T) {
	svc, db := setupSettlementTest(t)
	createSettlementUser(t, db, 1)

	if _, err := svc.Verify(VerifyInput{UserID: 1, GroupID: "missing"}); !errors.Is(err, ErrOrderGroupNotFound) {
		t.Fatalf("expected group not found, got: %v", err)
	}
}

func TestVerifyEarnedCreditsFromPlatformTiers(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	prize := createTestPrize(t, db, constants.PrizeTypeRaffle, "earn-raffle", "2.50")

	settingRepo := repository.NewSettingRepository(db)
	if _, err := settingRepo.Upsert(constants.SettingKeyPricingConfig, models.JSON{
		"is_credits_rates": true,
		"credits_rates": []map[string]interface{}{
			{"count": 2000, "percent": 5},
			{"count": 5000, "percent": 10},
		},
	}); err != nil {
		t.Fatalf("upsert pricing config failed: %v", err)
	}

	createPendingOrder(t, db, user.ID, prize.ID, constants.PrizeTypeRaffle, "group-earn", 20, 5000)

	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-earn", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	var earned models.Credit
	if err := db.Where("user_id = ? AND arrival = ?", user.ID, constants.CreditArrivalBought).First(&earned).Error; err != nil {
		t.Fatalf("expected earned credit: %v", err)
	}
	if earned.Amount != 500 {
		t.Fatalf("expected 10%% of 5000 pence, got %d", earned.Amount)
	}
	if earned.ExpiredAt == nil {
		t.Fatalf("expected credit expiry set")
	}
}

func TestVerifyCreditCouponSkipsEarnedCredits(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	prize := createTestPrize(t, db, constants.PrizeTypeRaffle, "coupon-credit-raffle", "2.50")

	settingRepo := repository.NewSettingRepository(db)
	if _, err := settingRepo.Upsert(constants.SettingKeyPricingConfig, models.JSON{
		"is_credits_rates": true,
		"credits_rates": []map[string]interface{}{
			{"count": 1000, "percent": 5},
		},
	}); err != nil {
		t.Fatalf("upsert pricing config failed: %v", err)
	}

	coupon := models.Coupon{Code: "CREDIT10", Type: constants.CouponTypeCredit, Value: decimal.NewFromInt(10), IsActive: true}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if err := db.Create(&models.CouponRedemption{CouponID: coupon.ID, UserID: user.ID, GroupID: "group-cc"}).Error; err != nil {
		t.Fatalf("create redemption failed: %v", err)
	}

	createPendingOrder(t, db, user.ID, prize.ID, constants.PrizeTypeRaffle, "group-cc", 10, 2500)

	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-cc", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	var credits []models.Credit
	if err := db.Where("user_id = ?", user.ID).Find(&credits).Error; err != nil {
		t.Fatalf("load credits failed: %v", err)
	}
	if len(credits) != 1 {
		t.Fatalf("expected coupon credit to suppress earned credits, got %d credits", len(credits))
	}
	if credits[0].Arrival != constants.CreditArrivalCoupon {
		t.Fatalf("expected coupon arrival, got %s", credits[0].Arrival)
	}
	if credits[0].Amount != 250 {
		t.Fatalf("expected 10%% of 2500 pence, got %d", credits[0].Amount)
	}
	if credits[0].CouponID == nil || *credits[0].CouponID != coupon.ID {
		t.Fatalf("expected credit linked to coupon")
	}
}

func TestVerifyCouponBelowBasketAmountIgnored(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	prize := createTestPrize(t, db, constants.PrizeTypeRaffle, "min-basket-raffle", "2.50")

	coupon := models.Coupon{Code: "BIGSPEND", Type: constants.CouponTypeCredit, Value: decimal.NewFromInt(10), BasketAmount: 5000, IsActive: true}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if err := db.Create(&models.CouponRedemption{CouponID: coupon.ID, UserID: user.ID, GroupID: "group-min"}).Error; err != nil {
		t.Fatalf("create redemption failed: %v", err)
	}

	createPendingOrder(t, db, user.ID, prize.ID, constants.PrizeTypeRaffle, "group-min", 4, 1000)

	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-min", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Credit{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count credits failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected coupon below threshold to be skipped, got %d credits", count)
	}
}

func TestVerifyPrizeCouponCreatesFreeOrder(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	paidPrize := createTestPrize(t, db, constants.PrizeTypePrize, "paid-prize", "4.99")
	freePrize := createTestPrize(t, db, constants.PrizeTypePrize, "free-prize", "4.99")

	coupon := models.Coupon{Code: "FREEPRIZE", Type: constants.CouponTypePrize, Value: decimal.NewFromInt(3), PrizeID: &freePrize.ID, IsActive: true}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if err := db.Create(&models.CouponRedemption{CouponID: coupon.ID, UserID: user.ID, GroupID: "group-fp"}).Error; err != nil {
		t.Fatalf("create redemption failed: %v", err)
	}

	createPendingOrder(t, db, user.ID, paidPrize.ID, constants.PrizeTypePrize, "group-fp", 2, 998)

	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-fp", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	var free models.Order
	if err := db.Where("group_id = ? AND payment_status = ?", "group-fp", constants.OrderStatusFree).First(&free).Error; err != nil {
		t.Fatalf("expected free order: %v", err)
	}
	if free.PrizeID != freePrize.ID {
		t.Fatalf("expected free order for coupon target prize, got %d", free.PrizeID)
	}
	if free.NumOfTickets != 3 || len(free.Tickets) != 3 {
		t.Fatalf("expected 3 free tickets, got %d/%d", free.NumOfTickets, len(free.Tickets))
	}
	if free.TotalCost != 0 {
		t.Fatalf("expected free order to cost nothing, got %d", free.TotalCost)
	}
}

func TestVerifyFixedOddsIncrementsTicketsBought(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	prize := createTestPrize(t, db, constants.PrizeTypeFixedOdds, "settle-odds", "1.00")
	if err := db.Model(prize).Updates(map[string]interface{}{"max_tickets": 100, "tickets_bought": 10}).Error; err != nil {
		t.Fatalf("update prize failed: %v", err)
	}

	createPendingOrder(t, db, user.ID, prize.ID, constants.PrizeTypeFixedOdds, "group-fo", 5, 500)

	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-fo", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	var stored models.Prize
	if err := db.First(&stored, prize.ID).Error; err != nil {
		t.Fatalf("load prize failed: %v", err)
	}
	if stored.TicketsBought != 15 {
		t.Fatalf("expected 15 tickets bought, got %d", stored.TicketsBought)
	}
}

func TestVerifyReferralReward(t *testing.T) {
	svc, db := setupSettlementTest(t)
	referrer := createSettlementUser(t, db, 1)
	referred := &models.User{
		ID:           2,
		Email:        "referred@example.com",
		PasswordHash: "hash",
		ReferralKey:  "ref-2",
		ReferredBy:   &referrer.ID,
		NeededSpend:  1000,
	}
	if err := db.Create(referred).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	prize := createTestPrize(t, db, constants.PrizeTypeRaffle, "referral-raffle", "2.50")

	createPendingOrder(t, db, referred.ID, prize.ID, constants.PrizeTypeRaffle, "group-ref", 5, 1250)

	if _, err := svc.Verify(VerifyInput{UserID: referred.ID, GroupID: "group-ref", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	var reward models.Credit
	if err := db.Where("user_id = ?", referrer.ID).First(&reward).Error; err != nil {
		t.Fatalf("expected referral reward credit: %v", err)
	}
	if reward.Amount != constants.ReferralRewardCredit {
		t.Fatalf("expected reward %d, got %d", constants.ReferralRewardCredit, reward.Amount)
	}

	var stored models.User
	if err := db.First(&stored, referred.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if stored.SpentMoney != 1250 {
		t.Fatalf("expected referral spend tracked, got %d", stored.SpentMoney)
	}
}

func TestVerifyLandingOrderGrantsFreeRaffle(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	landing := createTestPrize(t, db, constants.PrizeTypeRaffle, "landing-raffle", "2.50")
	other := createTestPrize(t, db, constants.PrizeTypeRaffle, "other-raffle", "2.50")

	order := createPendingOrder(t, db, user.ID, landing.ID, constants.PrizeTypeRaffle, "group-land", 2, 500)
	if err := db.Model(order).Update("is_from_landing", true).Error; err != nil {
		t.Fatalf("update order failed: %v", err)
	}

	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-land", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	var free models.Order
	if err := db.Where("group_id = ? AND payment_status = ?", "group-land", constants.OrderStatusFree).First(&free).Error; err != nil {
		t.Fatalf("expected free raffle order: %v", err)
	}
	if free.PrizeID != other.ID {
		t.Fatalf("expected free order for a different raffle, got %d", free.PrizeID)
	}
	// 赠单票数与付费订单一致
	if free.NumOfTickets != 2 || len(free.Tickets) != 2 {
		t.Fatalf("expected 2 free tickets matching the paid order, got %d/%d", free.NumOfTickets, len(free.Tickets))
	}
	if !free.IsFromLanding {
		t.Fatalf("expected landing flag carried onto the free order")
	}
}

func TestVerifyRaffleOrderGrantsFreeRaffle(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	bought := createTestPrize(t, db, constants.PrizeTypeRaffle, "bought-raffle", "2.50")
	second := createTestPrize(t, db, constants.PrizeTypeRaffle, "second-raffle", "2.50")

	// 非落地页的抽奖订单同样获赠第二抽奖
	createPendingOrder(t, db, user.ID, bought.ID, constants.PrizeTypeRaffle, "group-grant", 3, 750)

	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-grant", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	var free models.Order
	if err := db.Where("group_id = ? AND payment_status = ?", "group-grant", constants.OrderStatusFree).First(&free).Error; err != nil {
		t.Fatalf("expected free raffle order: %v", err)
	}
	if free.PrizeID != second.ID {
		t.Fatalf("expected free order for the other raffle, got %d", free.PrizeID)
	}
	if free.NumOfTickets != 3 || len(free.Tickets) != 3 {
		t.Fatalf("expected 3 free tickets matching the paid order, got %d/%d", free.NumOfTickets, len(free.Tickets))
	}
	if free.IsFromLanding {
		t.Fatalf("expected no landing flag on the free order")
	}
}

func TestVerifySoleRaffleFreeGrant(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	sole := createTestPrize(t, db, constants.PrizeTypeRaffle, "sole-raffle", "2.50")

	// 仅剩一个进行中抽奖时，普通订单无处可赠，跳过
	createPendingOrder(t, db, user.ID, sole.ID, constants.PrizeTypeRaffle, "group-sole", 2, 500)
	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-sole", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.Order{}).Where("group_id = ? AND payment_status = ?", "group-sole", constants.OrderStatusFree).Count(&count).Error; err != nil {
		t.Fatalf("count free orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no free order for non-landing sole raffle, got %d", count)
	}

	// 落地页订单允许赠同一抽奖
	landing := createPendingOrder(t, db, user.ID, sole.ID, constants.PrizeTypeRaffle, "group-sole-land", 2, 500)
	if err := db.Model(landing).Update("is_from_landing", true).Error; err != nil {
		t.Fatalf("update order failed: %v", err)
	}
	if _, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-sole-land", CheckoutID: "chk", TransactionID: "txn"}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	var free models.Order
	if err := db.Where("group_id = ? AND payment_status = ?", "group-sole-land", constants.OrderStatusFree).First(&free).Error; err != nil {
		t.Fatalf("expected free raffle order: %v", err)
	}
	if free.PrizeID != sole.ID {
		t.Fatalf("expected same-raffle grant for landing order, got %d", free.PrizeID)
	}
}

func TestVerifyCountsBonusTicketsInTotals(t *testing.T) {
	svc, db := setupSettlementTest(t)
	user := createSettlementUser(t, db, 1)
	prize := createTestPrize(t, db, constants.PrizeTypeRaffle, "bonus-count-raffle", "1.00")

	// 2 张付费票加 1 张赠票，入账票数按全部票号计
	order := createPendingOrder(t, db, user.ID, prize.ID, constants.PrizeTypeRaffle, "group-bonus", 2, 200)
	order.Tickets = NewTicketService().GenerateTickets(3)
	if err := db.Save(order).Error; err != nil {
		t.Fatalf("update order failed: %v", err)
	}

	result, err := svc.Verify(VerifyInput{UserID: user.ID, GroupID: "group-bonus", CheckoutID: "chk", TransactionID: "txn"})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.TicketCount != 3 {
		t.Fatalf("expected 3 settled tickets including the bonus one, got %d", result.TicketCount)
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if stored.TotalTicketsBought != 3 {
		t.Fatalf("expected 3 total tickets bought, got %d", stored.TotalTicketsBought)
	}
}
