package payment

import (
	"errors"
	"strings"
	"testing"
)

func TestApply(t *testing.T) {
	p := Payment{Total: 500, Status: StatusPending}

	p, err := Apply(p, 200)
	if err != nil {
		t.Fatal(err)
	}
	if p.Paid != 200 || p.Status != StatusPartial || p.Pending() != 300 {
		t.Fatalf("after partial: %+v", p)
	}

	p, err = Apply(p, 300)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != StatusPaid || p.Pending() != 0 {
		t.Fatalf("after full: %+v", p)
	}
}

func TestApplyRejectsBadAmounts(t *testing.T) {
	p := Payment{Total: 100}
	if _, err := Apply(p, 0); !errors.Is(err, ErrNonPositiveAmount) {
		t.Errorf("zero amount: %v", err)
	}
	if _, err := Apply(p, -5); !errors.Is(err, ErrNonPositiveAmount) {
		t.Errorf("negative amount: %v", err)
	}
	if _, err := Apply(p, 150); !errors.Is(err, ErrOverpayment) {
		t.Errorf("overpayment: %v", err)
	}
}

func TestRenderReceipt(t *testing.T) {
	p := Payment{Concept: "Inscripción", Total: 500, Paid: 300, Status: StatusPartial}
	r := Receipt{Number: "R-ABC12345", Amount: 200, Method: "efectivo", ReceivedBy: "Dirección"}
	doc := RenderReceipt(r, p, "Ana López", "3A").String()

	for _, want := range []string{"Recibo de Pago", "R-ABC12345", "Ana López", "Inscripción", "200.00", "efectivo"} {
		if !strings.Contains(doc, want) {
			t.Errorf("receipt missing %q:\n%s", want, doc)
		}
	}
}
