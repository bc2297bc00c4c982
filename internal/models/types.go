package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// JSON 类型定义，用于存储结构化配置
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringArray 字符串数组类型，用于存储票号等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// DiscountRate 折扣阶梯（满 AmountTickets 张后按 NewPrice 或 Percent 定价）
type DiscountRate struct {
	AmountTickets int             `json:"amount_tickets"`
	NewPrice      Money           `json:"new_price"`
	Percent       decimal.Decimal `json:"percent"`
}

// DiscountRates 折扣阶梯数组（JSON 列存储）
type DiscountRates []DiscountRate

// Value 实现 driver.Valuer 接口
func (r DiscountRates) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan 实现 sql.Scanner 接口
func (r *DiscountRates) Scan(value interface{}) error {
	if value == nil {
		*r = DiscountRates{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// CreditRate 积分返还阶梯（实付满 Count 便士后按 Percent 返还）
type CreditRate struct {
	Count   int64           `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

// CreditRates 积分返还阶梯数组（JSON 列存储）
type CreditRates []CreditRate

// Value 实现 driver.Valuer 接口
func (r CreditRates) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan 实现 sql.Scanner 接口
func (r *CreditRates) Scan(value interface{}) error {
	if value == nil {
		*r = CreditRates{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// FreeTicketRate 赠票阶梯（购买满 AmountTickets 张赠送 FreeTickets 张）
type FreeTicketRate struct {
	AmountTickets int `json:"amount_tickets"`
	FreeTickets   int `json:"free_tickets"`
}

// FreeTicketRates 赠票阶梯数组（JSON 列存储）
type FreeTicketRates []FreeTicketRate

// Value 实现 driver.Valuer 接口
func (r FreeTicketRates) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan 实现 sql.Scanner 接口
func (r *FreeTicketRates) Scan(value interface{}) error {
	if value == nil {
		*r = FreeTicketRates{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// AppliedCredit 订单占用的积分（结算时转为实际消费）
type AppliedCredit struct {
	CreditID    uint  `json:"credit_id"`
	SpentAmount int64 `json:"spent_amount"`
}

// AppliedCredits 订单占用积分数组（JSON 列存储）
type AppliedCredits []AppliedCredit

// Value 实现 driver.Valuer 接口
func (a AppliedCredits) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner 接口
func (a *AppliedCredits) Scan(value interface{}) error {
	if value == nil {
		*a = AppliedCredits{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// TotalSpent 汇总占用积分总额（便士）
func (a AppliedCredits) TotalSpent() int64 {
	var total int64
	for _, c := range a {
		total += c.SpentAmount
	}
	return total
}
