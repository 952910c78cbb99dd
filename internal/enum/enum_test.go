package enum_test

import (
	"encoding/json"
	"testing"

	"github.com/dinehub/admin-console/internal/enum"
)

func TestRestaurantStatusWire(t *testing.T) {
	cases := []struct {
		in   string
		want enum.RestaurantStatus
		wire string
	}{
		{"All", enum.RestaurantStatusAll, ""},
		{"", enum.RestaurantStatusAll, ""},
		{"pending", enum.RestaurantStatusPending, "Pending"},
		{"Approved", enum.RestaurantStatusApproved, "Approved"},
		{"REJECTED", enum.RestaurantStatusRejected, "Rejected"},
	}
	for _, tc := range cases {
		got, err := enum.ParseRestaurantStatus(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("parse %q: got %v, want %v", tc.in, got, tc.want)
		}
		if got.Wire() != tc.wire {
			t.Errorf("wire %q: got %q, want %q", tc.in, got.Wire(), tc.wire)
		}
	}

	if _, err := enum.ParseRestaurantStatus("Aproved"); err == nil {
		t.Fatal("expected error for misspelled status")
	}
}

func TestRestaurantStatusTerminal(t *testing.T) {
	if got := len(enum.RestaurantStatusPending.Actions()); got != 2 {
		t.Fatalf("pending actions: got %d, want 2", got)
	}
	if enum.RestaurantStatusApproved.Actions() != nil {
		t.Error("approved should offer no actions")
	}
	if enum.RestaurantStatusRejected.Actions() != nil {
		t.Error("rejected should offer no actions")
	}
}

func TestOrderStatusRoundTrip(t *testing.T) {
	statuses := enum.OrderStatuses()
	if len(statuses) != 8 {
		t.Fatalf("expected 8 order statuses, got %d", len(statuses))
	}
	for _, s := range statuses {
		byWire, err := enum.ParseOrderStatus(s.Wire())
		if err != nil || byWire != s {
			t.Errorf("wire %q: got %v, %v", s.Wire(), byWire, err)
		}
		byLabel, err := enum.ParseOrderStatus(s.String())
		if err != nil || byLabel != s {
			t.Errorf("label %q: got %v, %v", s.String(), byLabel, err)
		}
	}
	if enum.OrderStatusAll.Wire() != "" {
		t.Error("All must not have a wire value")
	}
	if enum.OrderStatus(42).Wire() != "" {
		t.Error("out of range status must not have a wire value")
	}
}

func TestActivity(t *testing.T) {
	a, err := enum.ParseActivity("Inactive")
	if err != nil {
		t.Fatal(err)
	}
	if a.Wire() != "false" {
		t.Errorf("got %q, want false", a.Wire())
	}
	if _, err := enum.ParseActivity("maybe"); err == nil {
		t.Fatal("expected error")
	}
}

func TestPaymentStatusLabel(t *testing.T) {
	if got := enum.PaymentStatusRefunded.String(); got != "Refunded" {
		t.Errorf("got %q", got)
	}
	p, err := enum.ParsePaymentStatus("paid")
	if err != nil || p != enum.PaymentStatusPaid {
		t.Fatalf("got %v, %v", p, err)
	}
}

func TestFilterJSON(t *testing.T) {
	type filter struct {
		Status  enum.OrderStatus   `json:"status"`
		Payment enum.PaymentStatus `json:"payment_status"`
	}
	var f filter
	if err := json.Unmarshal([]byte(`{"status":"Out for Delivery","payment_status":"All"}`), &f); err != nil {
		t.Fatal(err)
	}
	if f.Status != enum.OrderStatusOutForDelivery || f.Payment != enum.PaymentStatusAll {
		t.Fatalf("got %+v", f)
	}
	b, _ := json.Marshal(f)
	if string(b) != `{"status":"Out for Delivery","payment_status":"All"}` {
		t.Errorf("got %s", b)
	}
	if err := json.Unmarshal([]byte(`{"status":"shipped"}`), &f); err == nil {
		t.Error("unknown status must not decode")
	}
}
