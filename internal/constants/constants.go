package constants

// 奖品类型常量
const (
	PrizeTypeRaffle    = "raffle"
	PrizeTypePrize     = "prize"
	PrizeTypeFixedOdds = "fixed_odds"
)

// 活动类型常量
const (
	CompetitionTypeDreamHome = "dream_home"
	CompetitionTypePrize     = "prize"
	CompetitionTypeFixedOdds = "fixed_odds"
)

// 订单支付状态常量
const (
	OrderStatusPendingBasket    = "PENDING_BASKET"
	OrderStatusInPaymentProcess = "IN_PAYMENT_PROCESS"
	OrderStatusAccepted         = "ACCEPTED"
	OrderStatusFree             = "FREE"
)

// 优惠券类型常量
const (
	CouponTypeBasket    = "basket"
	CouponTypeCredit    = "credit"
	CouponTypePrize     = "prize"
	CouponTypeFixedOdds = "fixed_odds"
	CouponTypeDreamHome = "dream_home"
)

// 积分来源常量
const (
	CreditArrivalBought = "bought"
	CreditArrivalCoupon = "coupon"
)

// 下单与结算限额常量
const (
	MaxTicketsPerOrder       = 1000
	FixedOddsExposureLimit   = 250
	BonusOrderTotalCost      = 100
	RaffleRoundBypassTickets = 15
	CreditExpiryDays         = 30
	ReferralRewardCredit     = 1000
)

// 转化事件常量
const (
	ConversionEventAddToCart = "AddToCart"
	ConversionEventPurchase  = "Purchase"
)

// CRM 自定义属性常量
const (
	CRMAttrEntriesBought   = "entriesBought"
	CRMAttrDreamHomeTotal  = "dreamHomeTotal"
	CRMAttrFixedOddsTotal  = "fixedOddsTotal"
	CRMAttrLifestyleTotal  = "lifeStyleTotal"
	CRMAttrBasketStarted   = "basketStarted"
	CRMAttrLastBasketValue = "lastBasketValue"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskReceiptEmail      = "settlement:receipt_email"
	TaskConversionEvent   = "track:conversion_event"
	TaskCRMTicketsUpdate  = "crm:tickets_update"
	TaskCRMBasketUpdate   = "crm:basket_update"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "rh"
)

// 设置键常量
const (
	SettingKeySiteConfig    = "site_config"
	SettingKeyPricingConfig = "pricing_config"
	SettingKeySMTPConfig    = "smtp_config"
)

// 币种常量
const (
	SiteCurrencyDefault = "GBP"
)
