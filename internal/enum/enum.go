package enum

import (
	"fmt"
	"strings"
)

// All is the dropdown label meaning "no filter". It never reaches the wire.
const All = "All"

// ── State machines (enforced by the backend) ──

// RestaurantStatus is the approval state of a restaurant.
type RestaurantStatus int

const (
	RestaurantStatusAll RestaurantStatus = iota
	RestaurantStatusPending
	RestaurantStatusApproved
	RestaurantStatusRejected
)

var restaurantStatusWire = map[RestaurantStatus]string{
	RestaurantStatusPending:  "Pending",
	RestaurantStatusApproved: "Approved",
	RestaurantStatusRejected: "Rejected",
}

// Wire returns the backend representation, or "" for All.
func (s RestaurantStatus) Wire() string { return restaurantStatusWire[s] }

func (s RestaurantStatus) String() string {
	if s == RestaurantStatusAll {
		return All
	}
	return s.Wire()
}

// Actions lists the transitions offered from s. Approved and Rejected are terminal.
func (s RestaurantStatus) Actions() []RestaurantStatus {
	if s == RestaurantStatusPending {
		return []RestaurantStatus{RestaurantStatusApproved, RestaurantStatusRejected}
	}
	return nil
}

// ParseRestaurantStatus accepts either a wire value or a UI label, case-insensitively.
func ParseRestaurantStatus(s string) (RestaurantStatus, error) {
	if isAll(s) {
		return RestaurantStatusAll, nil
	}
	for k, v := range restaurantStatusWire {
		if strings.EqualFold(v, s) {
			return k, nil
		}
	}
	return RestaurantStatusAll, fmt.Errorf("unknown restaurant status %q", s)
}

func (s RestaurantStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *RestaurantStatus) UnmarshalText(b []byte) (err error) {
	*s, err = ParseRestaurantStatus(string(b))
	return err
}

// OrderStatus is the fulfilment state of an order. The console offers every
// status from every status; progression rules live on the backend.
type OrderStatus int

const (
	OrderStatusAll OrderStatus = iota
	OrderStatusPending
	OrderStatusPaymentPending
	OrderStatusConfirmed
	OrderStatusPreparing
	OrderStatusReady
	OrderStatusOutForDelivery
	OrderStatusDelivered
	OrderStatusCancelled
)

var orderStatusWire = []string{
	OrderStatusPending:        "pending",
	OrderStatusPaymentPending: "payment_pending",
	OrderStatusConfirmed:      "confirmed",
	OrderStatusPreparing:      "preparing",
	OrderStatusReady:          "ready",
	OrderStatusOutForDelivery: "out_for_delivery",
	OrderStatusDelivered:      "delivered",
	OrderStatusCancelled:      "cancelled",
}

var orderStatusLabel = []string{
	OrderStatusAll:            All,
	OrderStatusPending:        "Pending",
	OrderStatusPaymentPending: "Payment Pending",
	OrderStatusConfirmed:      "Confirmed",
	OrderStatusPreparing:      "Preparing",
	OrderStatusReady:          "Ready",
	OrderStatusOutForDelivery: "Out for Delivery",
	OrderStatusDelivered:      "Delivered",
	OrderStatusCancelled:      "Cancelled",
}

// OrderStatuses returns every selectable order status in display order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending, OrderStatusPaymentPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled,
	}
}

func (s OrderStatus) valid() bool { return s > OrderStatusAll && int(s) < len(orderStatusWire) }

// Wire returns the backend representation, or "" for All.
func (s OrderStatus) Wire() string {
	if !s.valid() {
		return ""
	}
	return orderStatusWire[s]
}

func (s OrderStatus) String() string {
	if s < 0 || int(s) >= len(orderStatusLabel) {
		return ""
	}
	return orderStatusLabel[s]
}

// ParseOrderStatus accepts a wire value or a UI label.
func ParseOrderStatus(s string) (OrderStatus, error) {
	if isAll(s) {
		return OrderStatusAll, nil
	}
	for _, st := range OrderStatuses() {
		if strings.EqualFold(st.Wire(), s) || strings.EqualFold(st.String(), s) {
			return st, nil
		}
	}
	return OrderStatusAll, fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *OrderStatus) UnmarshalText(b []byte) (err error) {
	*s, err = ParseOrderStatus(string(b))
	return err
}

// PaymentStatus is the settlement state of an order.
type PaymentStatus int

const (
	PaymentStatusAll PaymentStatus = iota
	PaymentStatusPending
	PaymentStatusPaid
	PaymentStatusFailed
	PaymentStatusRefunded
)

var paymentStatusWire = map[PaymentStatus]string{
	PaymentStatusPending:  "pending",
	PaymentStatusPaid:     "paid",
	PaymentStatusFailed:   "failed",
	PaymentStatusRefunded: "refunded",
}

func (s PaymentStatus) Wire() string { return paymentStatusWire[s] }

func (s PaymentStatus) String() string {
	if s == PaymentStatusAll {
		return All
	}
	w := s.Wire()
	if w == "" {
		return ""
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	if isAll(s) {
		return PaymentStatusAll, nil
	}
	for k, v := range paymentStatusWire {
		if strings.EqualFold(v, s) {
			return k, nil
		}
	}
	return PaymentStatusAll, fmt.Errorf("unknown payment status %q", s)
}

func (s PaymentStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *PaymentStatus) UnmarshalText(b []byte) (err error) {
	*s, err = ParsePaymentStatus(string(b))
	return err
}

// ── Boolean filters ──

// Activity filters customers and menu entities by their is_active flag.
type Activity int

const (
	ActivityAll Activity = iota
	ActivityActive
	ActivityInactive
)

// Wire returns "true", "false" or "" for All.
func (a Activity) Wire() string {
	switch a {
	case ActivityActive:
		return "true"
	case ActivityInactive:
		return "false"
	}
	return ""
}

func (a Activity) String() string {
	switch a {
	case ActivityActive:
		return "Active"
	case ActivityInactive:
		return "Inactive"
	}
	return All
}

func ParseActivity(s string) (Activity, error) {
	switch strings.ToLower(s) {
	case "", strings.ToLower(All):
		return ActivityAll, nil
	case "active", "true":
		return ActivityActive, nil
	case "inactive", "false":
		return ActivityInactive, nil
	}
	return ActivityAll, fmt.Errorf("unknown activity filter %q", s)
}

func (a Activity) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Activity) UnmarshalText(b []byte) (err error) {
	*a, err = ParseActivity(string(b))
	return err
}

// ── Roles ──

const (
	AdminRoleSuper      = "super_admin"
	AdminRoleOperations = "operations"
)

func isAll(s string) bool {
	return s == "" || strings.EqualFold(s, All)
}
