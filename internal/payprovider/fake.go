package payprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeMC777/cafeteria-api/internal/payment"
)

// Fake is an in-memory processor. Intents created through it succeed
// immediately; webhooks are accepted when the signature equals the secret.
// Development runs without processor keys use it, and so do tests.
type Fake struct {
	mu      sync.Mutex
	secret  string
	intents map[string]*Intent
	refunds map[string]*payment.Refund // by idempotency key

	// RefundErr, when set, fails every refund.
	RefundErr error
	// GetErr, when set, fails every lookup.
	GetErr      error
	RefundCalls int
}

func NewFake(secret string) *Fake {
	return &Fake{secret: secret, intents: map[string]*Intent{}, refunds: map[string]*payment.Refund{}}
}

// Put stores or replaces an intent.
func (f *Fake) Put(in Intent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := in
	f.intents[in.ID] = &cp
}

func (f *Fake) CreateIntent(_ context.Context, p CreateParams) (*Intent, error) {
	in := Intent{
		ID:           "pi_" + uuid.NewString(),
		Status:       StatusSucceeded,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Method:       "card",
		Metadata:     p.Metadata,
		ClientSecret: "secret_" + uuid.NewString(),
	}
	f.Put(in)
	return &in, nil
}

func (f *Fake) GetIntent(_ context.Context, id string) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	in, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *in
	return &cp, nil
}

type fakeEvent struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Intent string `json:"payment_intent"`
}

// ParseWebhook expects {"id","type","payment_intent"} and looks the intent up.
func (f *Fake) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if signature != f.secret {
		return nil, ErrInvalidSignature
	}
	var fe fakeEvent
	if err := json.Unmarshal(payload, &fe); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	ev := &Event{ID: fe.ID, Type: fe.Type}
	if fe.Intent != "" {
		in, err := f.GetIntent(context.Background(), fe.Intent)
		if err != nil {
			return nil, err
		}
		ev.Intent = in
	}
	return ev, nil
}

func (f *Fake) Refund(_ context.Context, intentID string, amount int64, key string) (*payment.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefundCalls++
	if f.RefundErr != nil {
		return nil, f.RefundErr
	}
	if r, ok := f.refunds[key]; ok {
		return r, nil
	}
	_, ok := f.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, intentID)
	}
	r := &payment.Refund{ID: "re_" + uuid.NewString(), Amount: amount, Status: "succeeded"}
	f.refunds[key] = r
	return r, nil
}
