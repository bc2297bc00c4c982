package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/crm/intercom"
	"github.com/rafflehouse-next/internal/logger"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/provider"
	"github.com/rafflehouse-next/internal/queue"
	"github.com/rafflehouse-next/internal/repository"
	"github.com/rafflehouse-next/internal/service"
	"github.com/rafflehouse-next/internal/track/facebook"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReceiptEmail, c.handleReceiptEmail)
	mux.HandleFunc(queue.TaskConversionEvent, c.handleConversionEvent)
	mux.HandleFunc(queue.TaskCRMTicketsUpdate, c.handleCRMTicketsUpdate)
	mux.HandleFunc(queue.TaskCRMBasketUpdate, c.handleCRMBasketUpdate)
}

func (c *Consumer) handleReceiptEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_receipt_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReceiptEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_receipt_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || strings.TrimSpace(payload.GroupID) == "" {
		logger.Debugw("worker_receipt_email_skip_invalid_payload", "user_id", payload.UserID, "group_id", payload.GroupID)
		return nil
	}
	if c.ReceiptService == nil {
		logger.Warnw("worker_receipt_email_skip_receipt_service_nil", "group_id", payload.GroupID)
		return nil
	}
	if err := c.ReceiptService.SendGroupReceipt(payload.UserID, payload.GroupID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderGroupNotFound):
			logger.Debugw("worker_receipt_email_skip_group_not_found", "user_id", payload.UserID, "group_id", payload.GroupID)
			return nil
		case errors.Is(err, service.ErrUserNotFound):
			logger.Debugw("worker_receipt_email_skip_user_not_found", "user_id", payload.UserID, "group_id", payload.GroupID)
			return nil
		case errors.Is(err, service.ErrEmailServiceDisabled), errors.Is(err, service.ErrEmailServiceNotConfigured):
			logger.Debugw("worker_receipt_email_skip_email_disabled", "user_id", payload.UserID, "group_id", payload.GroupID)
			return nil
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrEmailRecipientRejected):
			logger.Warnw("worker_receipt_email_skip_bad_recipient", "user_id", payload.UserID, "group_id", payload.GroupID, "error", err)
			return nil
		default:
			logger.Warnw("worker_receipt_email_send_failed", "user_id", payload.UserID, "group_id", payload.GroupID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleConversionEvent(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_conversion_event_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ConversionEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_conversion_event_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || strings.TrimSpace(payload.Event) == "" {
		logger.Debugw("worker_conversion_event_skip_invalid_payload", "user_id", payload.UserID, "event", payload.Event)
		return nil
	}
	if c.FacebookClient == nil || !c.FacebookClient.Enabled() {
		logger.Debugw("worker_conversion_event_skip_client_disabled", "event", payload.Event)
		return nil
	}
	user, err := c.UserRepo.GetByID(payload.UserID)
	if err != nil {
		logger.Warnw("worker_conversion_event_fetch_user_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	if user == nil {
		logger.Debugw("worker_conversion_event_skip_user_not_found", "user_id", payload.UserID)
		return nil
	}

	currency := payload.Currency
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	contentIDs := make([]string, 0, len(payload.PrizeIDs))
	for _, prizeID := range payload.PrizeIDs {
		contentIDs = append(contentIDs, strconv.FormatUint(uint64(prizeID), 10))
	}
	event := facebook.Event{
		Name:       payload.Event,
		Email:      user.Email,
		ValuePence: payload.ValuePence,
		Currency:   currency,
		ContentIDs: contentIDs,
	}
	if err := c.FacebookClient.SendEvent(ctx, event); err != nil {
		if errors.Is(err, facebook.ErrDisabled) {
			logger.Debugw("worker_conversion_event_skip_disabled", "event", payload.Event)
			return nil
		}
		logger.Warnw("worker_conversion_event_send_failed", "user_id", payload.UserID, "event", payload.Event, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleCRMTicketsUpdate(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_crm_tickets_update_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CRMTicketsUpdatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_crm_tickets_update_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || strings.TrimSpace(payload.GroupID) == "" {
		logger.Debugw("worker_crm_tickets_update_skip_invalid_payload", "user_id", payload.UserID, "group_id", payload.GroupID)
		return nil
	}
	if c.IntercomClient == nil || !c.IntercomClient.Enabled() {
		logger.Debugw("worker_crm_tickets_update_skip_client_disabled", "group_id", payload.GroupID)
		return nil
	}

	contact, user, err := c.lookupContact(ctx, payload.UserID)
	if err != nil {
		return err
	}
	if contact == nil {
		return nil
	}

	orders, _, err := c.OrderRepo.ListByUser(repository.OrderListFilter{UserID: payload.UserID, GroupID: payload.GroupID})
	if err != nil {
		logger.Warnw("worker_crm_tickets_update_fetch_orders_failed", "group_id", payload.GroupID, "error", err)
		return err
	}

	attrs := buildTicketAttributes(contact, orders)
	if len(attrs) == 0 {
		logger.Debugw("worker_crm_tickets_update_skip_no_settled_orders", "group_id", payload.GroupID)
		return nil
	}
	if err := c.IntercomClient.UpdateCustomAttributes(ctx, contact.ID, attrs); err != nil {
		logger.Warnw("worker_crm_tickets_update_failed", "user_id", payload.UserID, "email", user.Email, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleCRMBasketUpdate(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_crm_basket_update_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CRMBasketUpdatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_crm_basket_update_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_crm_basket_update_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if c.IntercomClient == nil || !c.IntercomClient.Enabled() {
		logger.Debugw("worker_crm_basket_update_skip_client_disabled", "user_id", payload.UserID)
		return nil
	}

	contact, _, err := c.lookupContact(ctx, payload.UserID)
	if err != nil {
		return err
	}
	if contact == nil {
		return nil
	}

	attrs := map[string]interface{}{
		constants.CRMAttrBasketStarted:   contact.AttributeNumber(constants.CRMAttrBasketStarted) + 1,
		constants.CRMAttrLastBasketValue: float64(payload.BasketValue) / 100,
	}
	if err := c.IntercomClient.UpdateCustomAttributes(ctx, contact.ID, attrs); err != nil {
		logger.Warnw("worker_crm_basket_update_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	return nil
}

// lookupContact 查询用户对应的 CRM 联系人,联系人缺失时跳过而不重试。
func (c *Consumer) lookupContact(ctx context.Context, userID uint) (*intercom.Contact, *models.User, error) {
	user, err := c.UserRepo.GetByID(userID)
	if err != nil {
		logger.Warnw("worker_crm_fetch_user_failed", "user_id", userID, "error", err)
		return nil, nil, err
	}
	if user == nil {
		logger.Debugw("worker_crm_skip_user_not_found", "user_id", userID)
		return nil, nil, nil
	}
	contact, err := c.IntercomClient.SearchContactByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, intercom.ErrContactNotFound) {
			logger.Debugw("worker_crm_skip_contact_not_found", "user_id", userID, "email", user.Email)
			return nil, user, nil
		}
		logger.Warnw("worker_crm_search_contact_failed", "user_id", userID, "email", user.Email, "error", err)
		return nil, user, err
	}
	return contact, user, nil
}

// buildTicketAttributes 按奖品类型累加已结算订单的门票数与花费。
func buildTicketAttributes(contact *intercom.Contact, orders []models.Order) map[string]interface{} {
	totalsByAttr := map[string]int64{}
	ticketCount := 0
	for _, order := range orders {
		if order.PaymentStatus != constants.OrderStatusAccepted && order.PaymentStatus != constants.OrderStatusFree {
			continue
		}
		ticketCount += len(order.Tickets)
		attr := spendAttrForPrizeType(order.PrizeType)
		if attr == "" {
			continue
		}
		totalsByAttr[attr] += order.TotalCost - order.SpentCredits
	}
	if ticketCount == 0 && len(totalsByAttr) == 0 {
		return nil
	}

	attrs := map[string]interface{}{
		constants.CRMAttrEntriesBought: contact.AttributeNumber(constants.CRMAttrEntriesBought) + float64(ticketCount),
	}
	for attr, pence := range totalsByAttr {
		attrs[attr] = contact.AttributeNumber(attr) + float64(pence)/100
	}
	return attrs
}

func spendAttrForPrizeType(prizeType string) string {
	switch prizeType {
	case constants.PrizeTypeRaffle:
		return constants.CRMAttrDreamHomeTotal
	case constants.PrizeTypeFixedOdds:
		return constants.CRMAttrFixedOddsTotal
	case constants.PrizeTypePrize:
		return constants.CRMAttrLifestyleTotal
	default:
		return ""
	}
}
