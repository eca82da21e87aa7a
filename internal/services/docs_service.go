package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/utils"
)

// DocsService renders the e-ticket and payment receipt PDFs of a PNR.
type DocsService struct {
	Tickets   TicketService
	Location  *time.Location
	RequestID string
	Loader    func(ctx context.Context, who domain.Principal, pnr string) (PNRStatus, error)
}

func (s DocsService) GenerateETicket(ctx context.Context, who domain.Principal, pnr string) ([]byte, string, error) {
	st, err := s.load(ctx, who, pnr)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", "pnr="+st.PNR)
	return buildETicketPDF(st, s.loc())
}

// GenerateReceipt is only available for tickets that were paid for.
func (s DocsService) GenerateReceipt(ctx context.Context, who domain.Principal, pnr string) ([]byte, string, error) {
	st, err := s.load(ctx, who, pnr)
	if err != nil {
		return nil, "", err
	}
	if st.Owner.Kind != models.OwnerUser || st.Fare <= 0 {
		return nil, "", domain.ValidationError{Field: "pnr_no", Msg: "no payment recorded for this ticket"}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", "pnr="+st.PNR)
	return buildReceiptPDF(st, s.loc())
}

func (s DocsService) load(ctx context.Context, who domain.Principal, pnr string) (PNRStatus, error) {
	if s.Loader != nil {
		return s.Loader(ctx, who, pnr)
	}
	return s.Tickets.Status(ctx, who, pnr)
}

func (s DocsService) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func buildETicketPDF(d PNRStatus, loc *time.Location) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+d.PNR, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ELECTRONIC RESERVATION SLIP")
	pdf.Ln(12)

	berth := "-"
	if d.Berth != nil {
		berth = fmt.Sprintf("Coach %d / Berth %d (%s)", d.Berth.CoachNo, d.Berth.BerthNo, d.Berth.SeatType)
	}
	status := d.Status
	if d.WaitingPosition > 0 {
		status = fmt.Sprintf("%s / WL %d (chance %s)", d.Status, d.WaitingPosition, safe(d.ConfirmationChance, "-"))
	}
	fare := utils.FormatRupees(d.Fare)
	if d.Owner.Kind == models.OwnerEmployee {
		fare = fmt.Sprintf("FREE (listed %s)", utils.FormatRupees(d.OriginalFare))
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("PNR            : %s", d.PNR),
		fmt.Sprintf("Passenger      : %s", safe(d.PassengerName, "-")),
		fmt.Sprintf("Train          : %s", safe(d.TrainNo, "-")),
		fmt.Sprintf("Journey        : %s -> %s", safe(d.Source, "-"), safe(d.Destination, "-")),
		fmt.Sprintf("Date           : %s", safe(d.JourneyDate, "-")),
		fmt.Sprintf("Class          : %s", safe(d.ClassName, fmt.Sprintf("#%d", d.ClassID))),
		fmt.Sprintf("Status         : %s", status),
		fmt.Sprintf("Berth          : %s", berth),
		fmt.Sprintf("Fare           : %s", fare),
		fmt.Sprintf("Booked at      : %s", utils.FormatDateTime(d.BookedAt, loc)),
	}
	if d.CancelledAt != nil {
		lines = append(lines, fmt.Sprintf("Cancelled at   : %s", utils.FormatDateTime(*d.CancelledAt, loc)))
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Valid for one passenger. Carry a photo identity card matching the passenger name during the journey.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render e-ticket", Err: err}
	}

	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", d.PNR, utils.SafeFilenamePart(d.PassengerName))
	return buf.Bytes(), filename, nil
}

func buildReceiptPDF(d PNRStatus, loc *time.Location) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+d.PNR, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Receipt no : RCPT-"+d.PNR)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+utils.FormatDateTime(time.Now(), loc))
	pdf.Ln(10)

	desc := fmt.Sprintf("Train %s, %s -> %s on %s, %s",
		safe(d.TrainNo, "-"), safe(d.Source, "-"), safe(d.Destination, "-"),
		safe(d.JourneyDate, "-"), safe(d.ClassName, "class"),
	)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Details:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "1) "+desc+" - "+safe(d.PassengerName, "-"), "", "", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Paid: "+utils.FormatRupees(d.Fare))
	pdf.Ln(8)
	if d.RefundAmount != nil {
		pdf.Cell(0, 8, "Refunded: "+utils.FormatRupees(*d.RefundAmount))
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render receipt", Err: err}
	}
	return buf.Bytes(), fmt.Sprintf("RECEIPT_%s.pdf", d.PNR), nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
