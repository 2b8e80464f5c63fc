package service

import (
	"bytes"
	"context"
	"fmt"
	"homestay/internal/domains/booking/model"
	"homestay/internal/domains/booking/model/dto"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{
	"Booking Number", "Homestay", "Customer ID", "Check In", "Check Out", "Nights", "Guests",
	"Type", "Status", "Payment Status", "Payment Method", "Total (VND)", "Created At",
}

// Export renders the bookings matching filter as an XLSX workbook ordered by check-in.
func (s *serviceImpl) Export(ctx context.Context, filter dto.BookingFilter) (res []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Export")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params := gDto.QueryParams{SortBy: model.FieldCheckIn, SortDir: gDto.SortDirAsc}

	bookings, err := s.repo.GetAll(ctx, params, filter.ToFilterGroup())
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings for export")

		return res, fmt.Errorf("failed to get bookings for export: %w", err)
	}

	var rows dto.GetBookingsResponse
	rows.FromModels(bookings, len(bookings), 0)

	if err = s.attachDetails(ctx, rows.Bookings); err != nil {
		return res, err
	}

	return writeWorkbook(rows.Bookings)
}

func writeWorkbook(bookings []dto.BookingResponse) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name export sheet: %w", err)
	}

	header, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err = file.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	if err = file.SetCellStyle(exportSheet, "A1", lastCol+"1", header); err != nil {
		return nil, fmt.Errorf("failed to style export header: %w", err)
	}

	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)

		row := []any{
			b.BookingNumber, b.HomestayName, b.CustomerID, b.CheckIn, b.CheckOut, b.Nights, b.Guests,
			b.BookingType, b.Status, b.PaymentStatus, b.PaymentMethod, b.TotalPrice, b.CreatedAt,
		}

		if err = file.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write export row: %w", err)
		}
	}

	_ = file.SetColWidth(exportSheet, "A", "A", 24)
	_ = file.SetColWidth(exportSheet, "B", "C", 36)
	_ = file.SetColWidth(exportSheet, "D", lastCol, 16)

	var buf bytes.Buffer
	if err = file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write export workbook: %w", err)
	}

	return buf.Bytes(), nil
}
