package payment

import (
	"bytes"
	"fmt"
	"time"
)

// RenderReceipt produces the receipt document handed to the storage gateway.
func RenderReceipt(r Receipt, p Payment, studentName, gradeGroup string) *bytes.Buffer {
	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, "ESCUELA MARIANO ESCOBEDO")
	fmt.Fprintln(buf, "Recibo de Pago")
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "Recibo No: %s\n", r.Number)
	fmt.Fprintf(buf, "Fecha:     %s\n", time.Unix(r.CreatedAt, 0).Format("02/01/2006 15:04"))
	fmt.Fprintf(buf, "Alumno:    %s (%s)\n", studentName, gradeGroup)
	fmt.Fprintf(buf, "Concepto:  %s\n", p.Concept)
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "%-28s $%10.2f\n", "Monto total", p.Total)
	fmt.Fprintf(buf, "%-28s $%10.2f\n", "Pagado anteriormente", p.Paid-r.Amount)
	fmt.Fprintf(buf, "%-28s $%10.2f\n", "Pago actual", r.Amount)
	fmt.Fprintf(buf, "%-28s $%10.2f\n", "Pendiente", p.Pending())
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "Método de pago: %s\n", r.Method)
	if r.Notes != "" {
		fmt.Fprintf(buf, "Observaciones:  %s\n", r.Notes)
	}
	fmt.Fprintf(buf, "Recibido por:   %s\n", r.ReceivedBy)
	return buf
}

// ReceiptFilename names the stored receipt document.
func ReceiptFilename(number string) string {
	return fmt.Sprintf("recibo_%s.txt", number)
}
