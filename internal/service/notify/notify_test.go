package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
)

type sentText struct{ to, body string }

type fakeWhatsApp struct {
	sent []sentText
	err  error
}

func (f *fakeWhatsApp) SendText(_ context.Context, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentText{to, body})
	return "wamid", nil
}

type customers map[uint]*models.Customer

func (c customers) Get(_ context.Context, id uint) (*models.Customer, error) {
	if cust, ok := c[id]; ok {
		return cust, nil
	}
	return nil, errors.New("not found")
}

func ptr[T any](v T) *T { return &v }

func TestHatchingHook(t *testing.T) {
	wa := &fakeWhatsApp{}
	cust := &models.Customer{FullName: "Abebe Kebede", Phone: "+251911000111"}
	n := NewNotifier(wa, customers{7: cust}, "", nil)

	hook := n.HatchingHook()
	h := &models.Hatching{HatchingCode: "H-1", ChicksHatched: 87, CustomerID: ptr(uint(7)), NotifyCustomer: ptr(true)}
	hook(context.Background(), h)

	require.Len(t, wa.sent, 1)
	assert.Equal(t, "+251911000111", wa.sent[0].to)
	assert.Contains(t, wa.sent[0].body, "Abebe Kebede")
	assert.Contains(t, wa.sent[0].body, "87 chicks")
}

func TestHatchingHookSkips(t *testing.T) {
	wa := &fakeWhatsApp{}
	n := NewNotifier(wa, customers{7: {FullName: "No Phone"}}, "", nil)
	hook := n.HatchingHook()

	hook(context.Background(), &models.Hatching{CustomerID: ptr(uint(7)), NotifyCustomer: ptr(false)})
	hook(context.Background(), &models.Hatching{CustomerID: ptr(uint(7))})
	hook(context.Background(), &models.Hatching{NotifyCustomer: ptr(true)})
	hook(context.Background(), &models.Hatching{CustomerID: ptr(uint(7)), NotifyCustomer: ptr(true)})
	hook(context.Background(), &models.Hatching{CustomerID: ptr(uint(99)), NotifyCustomer: ptr(true)})

	assert.Empty(t, wa.sent)
}

func TestMortalityHook(t *testing.T) {
	wa := &fakeWhatsApp{}
	n := NewNotifier(wa, customers{}, "+251922000222", nil)
	hook := n.MortalityHook()

	hook(context.Background(), &models.Mortality{BatchNumber: "B-3", Number: 200, Mortality: 4, Reason: "cold", NotifyVet: ptr(true)})
	hook(context.Background(), &models.Mortality{BatchNumber: "B-4", NotifyVet: ptr(false)})

	require.Len(t, wa.sent, 1)
	assert.Equal(t, "+251922000222", wa.sent[0].to)
	assert.Equal(t, "Mortality alert: 4 of 200 chicks lost in batch B-3. Reason: cold", wa.sent[0].body)
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	wa := &fakeWhatsApp{err: errors.New("provider down")}
	n := NewNotifier(wa, customers{}, "+251922000222", nil)

	assert.NotPanics(t, func() {
		n.MortalityHook()(context.Background(), &models.Mortality{NotifyVet: ptr(true)})
	})
}

func TestNilClientDisablesDelivery(t *testing.T) {
	n := NewNotifier(nil, customers{}, "+251922000222", nil)

	assert.NotPanics(t, func() {
		n.MortalityHook()(context.Background(), &models.Mortality{NotifyVet: ptr(true)})
	})
}
