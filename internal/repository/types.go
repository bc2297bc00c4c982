package repository

// PrizeListFilter 查询奖品列表的过滤条件
type PrizeListFilter struct {
	Page     int
	PageSize int
	Type     string
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	PaymentStatus string
	PrizeType     string
	GroupID       string
}
