package models

import (
	"testing"
	"time"
)

func TestSaleBarcode(t *testing.T) {
	createdAt := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)

	if got := SaleBarcode(createdAt, 42); got != "20260830000042" {
		t.Fatalf("SaleBarcode = %q, want 20260830000042", got)
	}
	if got := SaleBarcode(createdAt, 123456); got != "20260830123456" {
		t.Fatalf("SaleBarcode = %q, want 20260830123456", got)
	}
}

func TestNormalizePaymentMethod(t *testing.T) {
	for _, m := range []string{PaymentMethodCash, PaymentMethodCard, PaymentMethodCheck, PaymentMethodCredit} {
		if got := NormalizePaymentMethod(m); got != m {
			t.Errorf("NormalizePaymentMethod(%q) = %q", m, got)
		}
	}
	for _, m := range []string{"", "bitcoin", "CASH"} {
		if got := NormalizePaymentMethod(m); got != PaymentMethodCash {
			t.Errorf("NormalizePaymentMethod(%q) = %q, want cash", m, got)
		}
	}
}

func TestNormalizePaymentStatus(t *testing.T) {
	for _, s := range []string{PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid} {
		if got := NormalizePaymentStatus(s); got != s {
			t.Errorf("NormalizePaymentStatus(%q) = %q", s, got)
		}
	}
	if got := NormalizePaymentStatus("overdue"); got != PaymentStatusPending {
		t.Errorf("NormalizePaymentStatus(overdue) = %q, want pending", got)
	}
}
