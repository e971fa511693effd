package billing

import (
	"encoding/json"
	"fmt"
)

// Action is the lifecycle transition a webhook event asks for.
type Action string

const (
	ActionActivate    Action = "activate"
	ActionUpdate      Action = "update"
	ActionCancel      Action = "cancel"
	ActionRenew       Action = "renew"
	ActionMarkPastDue Action = "mark_past_due"
	ActionIgnore      Action = "ignore"
)

// Classify maps a provider event type to a lifecycle action. Unknown types
// classify as ActionIgnore, never as an error: the webhook endpoint may be
// subscribed to more event types than this service consumes.
func Classify(eventType string) Action {
	switch eventType {
	case "checkout.session.completed":
		return ActionActivate
	case "customer.subscription.created", "customer.subscription.updated":
		return ActionUpdate
	case "customer.subscription.deleted":
		return ActionCancel
	case "invoice.paid":
		return ActionRenew
	case "invoice.payment_failed":
		return ActionMarkPastDue
	default:
		return ActionIgnore
	}
}

// Event is a verified webhook delivery reduced to the fields the
// reconciliation pipeline reads.
type Event struct {
	ID     string
	Type   string
	Object EventObject
}

// ProviderRef is a reference to another provider object. Webhook payloads
// usually carry these as plain ID strings, but expanded deliveries carry the
// full object; both decode to the bare ID.
type ProviderRef string

func (r *ProviderRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ""
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = ProviderRef(id)
		return nil
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode provider reference: %w", err)
	}
	*r = ProviderRef(obj.ID)
	return nil
}

func (r ProviderRef) String() string { return string(r) }

// EventObject is the event's data.object decoded into the superset of fields
// used across checkout sessions, subscriptions, and invoices. Fields absent
// from a given object type decode to their zero values.
type EventObject struct {
	ID                string      `json:"id"`
	Customer          ProviderRef `json:"customer"`
	Subscription      ProviderRef `json:"subscription"`
	ClientReferenceID string      `json:"client_reference_id"`
	CustomerEmail     string      `json:"customer_email"`
	CustomerDetails   struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Status string    `json:"status"`
	Items  priceList `json:"items"`
	Lines  priceList `json:"lines"`
}

type priceList struct {
	Data []struct {
		Price struct {
			ID string `json:"id"`
		} `json:"price"`
	} `json:"data"`
}

func (l priceList) first() string {
	if len(l.Data) == 0 {
		return ""
	}
	return l.Data[0].Price.ID
}

// FirstPriceID returns the price behind the object's first line item:
// subscription items for subscription objects, invoice lines for invoices.
// Empty when the object carries neither.
func (o EventObject) FirstPriceID() string {
	if id := o.Items.first(); id != "" {
		return id
	}
	return o.Lines.first()
}

// NewEvent decodes a verified delivery's data.object into an Event. A decode
// failure after signature verification means the provider sent a shape this
// service cannot read; the caller surfaces it as a retryable error.
func NewEvent(id, eventType string, rawObject []byte) (Event, error) {
	var obj EventObject
	if err := json.Unmarshal(rawObject, &obj); err != nil {
		return Event{}, fmt.Errorf("decode event object: %w", err)
	}
	return Event{ID: id, Type: eventType, Object: obj}, nil
}
