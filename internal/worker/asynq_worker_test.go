package worker

import (
	"testing"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/crm/intercom"
	"github.com/rafflehouse-next/internal/models"
)

func TestBuildTicketAttributesSkipsUnsettledOrders(t *testing.T) {
	contact := &intercom.Contact{ID: "c1", CustomAttributes: map[string]interface{}{}}
	orders := []models.Order{
		{PaymentStatus: constants.OrderStatusPendingBasket, PrizeType: constants.PrizeTypeRaffle, Tickets: models.StringArray{"t1"}, TotalCost: 100},
		{PaymentStatus: constants.OrderStatusInPaymentProcess, PrizeType: constants.PrizeTypePrize, Tickets: models.StringArray{"t2"}, TotalCost: 200},
	}

	if attrs := buildTicketAttributes(contact, orders); attrs != nil {
		t.Fatalf("expected nil attrs for unsettled orders, got %v", attrs)
	}
}

func TestBuildTicketAttributesAccumulatesByPrizeType(t *testing.T) {
	contact := &intercom.Contact{
		ID: "c1",
		CustomAttributes: map[string]interface{}{
			constants.CRMAttrEntriesBought:  float64(5),
			constants.CRMAttrDreamHomeTotal: float64(10),
		},
	}
	orders := []models.Order{
		{
			PaymentStatus: constants.OrderStatusAccepted,
			PrizeType:     constants.PrizeTypeRaffle,
			Tickets:       models.StringArray{"t1", "t2", "t3"},
			TotalCost:     1500,
			SpentCredits:  500,
		},
		{
			PaymentStatus: constants.OrderStatusFree,
			PrizeType:     constants.PrizeTypeFixedOdds,
			Tickets:       models.StringArray{"t4"},
			TotalCost:     0,
		},
	}

	attrs := buildTicketAttributes(contact, orders)
	if attrs == nil {
		t.Fatalf("expected attrs, got nil")
	}
	if got := attrs[constants.CRMAttrEntriesBought]; got != float64(9) {
		t.Fatalf("unexpected entries bought: %v", got)
	}
	if got := attrs[constants.CRMAttrDreamHomeTotal]; got != float64(20) {
		t.Fatalf("unexpected raffle total: %v", got)
	}
	if got := attrs[constants.CRMAttrFixedOddsTotal]; got != float64(0) {
		t.Fatalf("unexpected fixed odds total: %v", got)
	}
}

func TestSpendAttrForPrizeType(t *testing.T) {
	if got := spendAttrForPrizeType(constants.PrizeTypeRaffle); got != constants.CRMAttrDreamHomeTotal {
		t.Fatalf("unexpected attr for raffle: %s", got)
	}
	if got := spendAttrForPrizeType(constants.PrizeTypePrize); got != constants.CRMAttrLifestyleTotal {
		t.Fatalf("unexpected attr for prize: %s", got)
	}
	if got := spendAttrForPrizeType("unknown"); got != "" {
		t.Fatalf("expected empty attr for unknown type, got %s", got)
	}
}
