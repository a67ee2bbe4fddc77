package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Notification methods emitted by the catalog
const (
	MethodProductCreated             = "product.created"
	MethodProductPriceUpdated        = "product.price_updated"
	MethodProductAvailabilityUpdated = "product.availability_updated"
	MethodProductDeleted             = "product.deleted"

	// MethodProductRefresh is accepted on the inbound queue and asks the
	// catalog to drop its cached copy of a product.
	MethodProductRefresh = "product.refresh"
)

// Urgency is the delivery urgency of an outbound message
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

var urgencyPriority = map[Urgency]uint8{
	UrgencyLow:      1,
	UrgencyMedium:   5,
	UrgencyHigh:     8,
	UrgencyCritical: 10,
}

// MaxPriority is the highest priority a queue has to support.
const MaxPriority = 10

// ParseUrgency accepts the case-insensitive urgency names.
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := urgencyPriority[u]; !ok {
		return "", fmt.Errorf("unknown urgency %q", s)
	}
	return u, nil
}

// Priority maps the urgency onto a broker priority. Unknown values get the medium priority.
func (u Urgency) Priority() uint8 {
	if p, ok := urgencyPriority[u]; ok {
		return p
	}
	return urgencyPriority[UrgencyMedium]
}

// OutboundMessage is the envelope published to sibling services
type OutboundMessage struct {
	MessageID   string          `json:"message_id"`
	FromService string          `json:"from_service"`
	ToService   string          `json:"to_service"`
	Method      string          `json:"method"`
	Payload     json.RawMessage `json:"payload"`
	Urgency     Urgency         `json:"urgency"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ProductEvent is the payload of product notifications
type ProductEvent struct {
	ProductID   int64       `json:"product_id"`
	Name        string      `json:"name,omitempty"`
	ProductType ProductType `json:"product_type,omitempty"`
	OldPrice    *string     `json:"old_price,omitempty"`
	NewPrice    *string     `json:"new_price,omitempty"`
	IsAvailable *bool       `json:"is_available,omitempty"`
	ActorID     string      `json:"actor_id,omitempty"`
}

// RefreshRequest is the payload of MethodProductRefresh messages
type RefreshRequest struct {
	ProductID int64 `json:"product_id"`
}
