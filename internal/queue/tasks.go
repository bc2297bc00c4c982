package queue

import (
	"encoding/json"

	"github.com/rafflehouse-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReceiptEmail 结算回执邮件任务
	TaskReceiptEmail = constants.TaskReceiptEmail
	// TaskConversionEvent 转化事件上报任务
	TaskConversionEvent = constants.TaskConversionEvent
	// TaskCRMTicketsUpdate CRM 购票属性更新任务
	TaskCRMTicketsUpdate = constants.TaskCRMTicketsUpdate
	// TaskCRMBasketUpdate CRM 加购属性更新任务
	TaskCRMBasketUpdate = constants.TaskCRMBasketUpdate
)

// ReceiptEmailPayload 回执邮件任务载荷
type ReceiptEmailPayload struct {
	UserID  uint   `json:"user_id"`
	GroupID string `json:"group_id"`
}

// ConversionEventPayload 转化事件任务载荷
type ConversionEventPayload struct {
	UserID     uint   `json:"user_id"`
	Event      string `json:"event"`
	GroupID    string `json:"group_id"`
	ValuePence int64  `json:"value_pence"`
	Currency   string `json:"currency"`
	PrizeIDs   []uint `json:"prize_ids,omitempty"`
}

// CRMTicketsUpdatePayload CRM 购票属性更新任务载荷
type CRMTicketsUpdatePayload struct {
	UserID  uint   `json:"user_id"`
	GroupID string `json:"group_id"`
}

// CRMBasketUpdatePayload CRM 加购属性更新任务载荷
type CRMBasketUpdatePayload struct {
	UserID      uint  `json:"user_id"`
	BasketValue int64 `json:"basket_value"`
}

// NewReceiptEmailTask 创建回执邮件任务
func NewReceiptEmailTask(payload ReceiptEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptEmail, body), nil
}

// NewConversionEventTask 创建转化事件任务
func NewConversionEventTask(payload ConversionEventPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConversionEvent, body), nil
}

// NewCRMTicketsUpdateTask 创建 CRM 购票属性更新任务
func NewCRMTicketsUpdateTask(payload CRMTicketsUpdatePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCRMTicketsUpdate, body), nil
}

// NewCRMBasketUpdateTask 创建 CRM 加购属性更新任务
func NewCRMBasketUpdateTask(payload CRMBasketUpdatePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCRMBasketUpdate, body), nil
}
