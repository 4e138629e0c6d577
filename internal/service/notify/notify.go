package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/internal/service/farm"
	"github.com/mamadbah2/telelbirds/pkg/clients/whatsapp"
)

// CustomerLookup loads the customer a hatching belongs to.
type CustomerLookup interface {
	Get(ctx context.Context, id uint) (*models.Customer, error)
}

// Notifier turns farm events into WhatsApp texts. A nil client disables
// delivery; failures are logged only.
type Notifier struct {
	client    whatsapp.Client
	customers CustomerLookup
	vetPhone  string
	logger    *zap.Logger
}

func NewNotifier(client whatsapp.Client, customers CustomerLookup, vetPhone string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{client: client, customers: customers, vetPhone: vetPhone, logger: logger}
}

// HatchingHook tells the customer their chicks are ready when the record asks
// for it.
func (n *Notifier) HatchingHook() farm.Hook[models.Hatching] {
	return func(ctx context.Context, h *models.Hatching) {
		if h.NotifyCustomer == nil || !*h.NotifyCustomer || h.CustomerID == nil {
			return
		}

		customer, err := n.customers.Get(ctx, *h.CustomerID)
		if err != nil {
			n.logger.Warn("hatching notification skipped", zap.Uint("customer_id", *h.CustomerID), zap.Error(err))
			return
		}
		if strings.TrimSpace(customer.Phone) == "" {
			n.logger.Debug("customer has no phone", zap.Uint("customer_id", customer.ID))
			return
		}

		n.send(ctx, "hatching", customer.Phone, HatchingMessage(customer, h))
	}
}

// MortalityHook alerts the vet when the record asks for it.
func (n *Notifier) MortalityHook() farm.Hook[models.Mortality] {
	return func(ctx context.Context, m *models.Mortality) {
		if m.NotifyVet == nil || !*m.NotifyVet || n.vetPhone == "" {
			return
		}
		n.send(ctx, "mortality", n.vetPhone, MortalityMessage(m))
	}
}

func (n *Notifier) send(ctx context.Context, kind, to, body string) {
	if n.client == nil {
		n.logger.Debug("whatsapp disabled, notification dropped", zap.String("kind", kind))
		return
	}

	id, err := n.client.SendText(ctx, to, body)
	if err != nil {
		n.logger.Error("failed to send notification", zap.String("kind", kind), zap.Error(err))
		return
	}
	n.logger.Info("notification sent", zap.String("kind", kind), zap.String("message_id", id))
}

func HatchingMessage(c *models.Customer, h *models.Hatching) string {
	name := strings.TrimSpace(c.FullName)
	if name == "" {
		name = "customer"
	}
	return fmt.Sprintf("Hello %s, your batch %s has hatched: %d chicks are ready for you at TelelBirds.",
		name, h.HatchingCode, h.ChicksHatched)
}

func MortalityMessage(m *models.Mortality) string {
	msg := fmt.Sprintf("Mortality alert: %d of %d chicks lost in batch %s.", m.Mortality, m.Number, m.BatchNumber)
	if reason := strings.TrimSpace(m.Reason); reason != "" {
		msg += " Reason: " + reason
	}
	return msg
}
