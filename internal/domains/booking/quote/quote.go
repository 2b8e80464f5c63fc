// Package quote prices a stay from the stored homestay and room rates.
package quote

//go:generate go run go.uber.org/mock/mockgen -source=./quote.go -destination=./mocks/quote_mock.go -package=mocks

import (
	"context"
	"fmt"
	"homestay/infras/otel"
	"homestay/internal/domains/booking/model"
	"homestay/internal/domains/booking/model/dto"
	"homestay/internal/domains/booking/pricing"
	homestayModel "homestay/internal/domains/homestay/model"
	homestayRepo "homestay/internal/domains/homestay/repository"
	roomModel "homestay/internal/domains/room/model"
	roomRepo "homestay/internal/domains/room/repository"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	"time"

	"github.com/rs/zerolog/log"
)

type Room struct {
	RoomID   string
	Name     string
	Price    int64
	Quantity int
}

type Quote struct {
	HomestayID   string
	HomestayName string
	OwnerID      string
	CheckIn      time.Time
	CheckOut     time.Time
	Nights       int
	Guests       int
	BookingType  string
	Rooms        []Room
	Total        int64
}

type Quoter interface {
	Quote(ctx context.Context, stay dto.StayRequest) (Quote, error)
}

type quoterImpl struct {
	homestayRepo homestayRepo.Homestay
	roomRepo     roomRepo.Room
	otel         otel.Otel
}

func New(homestayRepo homestayRepo.Homestay, roomRepo roomRepo.Room, otel otel.Otel) Quoter {
	return &quoterImpl{
		homestayRepo: homestayRepo,
		roomRepo:     roomRepo,
		otel:         otel,
	}
}

// Quote validates a stay against the catalog and prices it. Client-sent prices are never used.
func (q *quoterImpl) Quote(ctx context.Context, stay dto.StayRequest) (res Quote, err error) {
	ctx, scope := q.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Quote")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	checkIn, checkOut, err := stay.Dates()
	if err != nil {
		return res, err
	}

	homestay, err := q.homestayRepo.Get(ctx, shared.FilterByID(stay.HomestayID, homestayModel.FieldID, homestayModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get homestay")

		return res, fmt.Errorf("failed to get homestay: %w", err)
	}

	if homestay.ID == constant.Empty || !homestay.Active {
		return res, failure.NotFound("homestay not found")
	}

	if stay.Guests > homestay.MaxGuests {
		return res, failure.BadRequestFromString(fmt.Sprintf("%s accepts at most %d guests", homestay.Name, homestay.MaxGuests))
	}

	res = Quote{
		HomestayID:   homestay.ID,
		HomestayName: homestay.Name,
		OwnerID:      homestay.OwnerID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Nights:       pricing.Nights(checkIn, checkOut),
		Guests:       stay.Guests,
		BookingType:  stay.BookingType,
	}

	sel := pricing.Selection{BookingType: stay.BookingType, HomestayPrice: homestay.PricePerNight}

	if stay.BookingType == model.TypeRoom {
		if res.Rooms, err = q.rooms(ctx, homestay.ID, stay.RoomSelections()); err != nil {
			return res, err
		}

		for _, room := range res.Rooms {
			sel.Rooms = append(sel.Rooms, pricing.Room{Price: room.Price, Quantity: room.Quantity})
		}
	}

	res.Total = pricing.Total(sel, res.Nights)

	return res, nil
}

func (q *quoterImpl) rooms(ctx context.Context, homestayID string, selections model.RoomSelections) ([]Room, error) {
	if len(selections) == 0 {
		return nil, failure.BadRequestFromString("rooms are required for a ROOM booking")
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: roomModel.FieldID, Operator: gDto.FilterOperatorIn, Value: selections.IDs(), Table: roomModel.TableName},
			gDto.Filter{Field: roomModel.FieldHomestayID, Operator: gDto.FilterOperatorEq, Value: homestayID, Table: roomModel.TableName},
			gDto.Filter{Field: roomModel.FieldActive, Operator: gDto.FilterOperatorEq, Value: true, Table: roomModel.TableName},
		},
	}

	found, err := q.roomRepo.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}

	byID := make(map[string]roomModel.Room, len(found))
	for _, room := range found {
		byID[room.ID] = room
	}

	rooms := make([]Room, 0, len(selections))
	seen := make(map[string]bool, len(selections))

	for _, sel := range selections {
		room, ok := byID[sel.RoomID]
		if !ok {
			return nil, failure.BadRequestFromString("room " + sel.RoomID + " is not available in this homestay")
		}

		if seen[sel.RoomID] {
			return nil, failure.BadRequestFromString("room " + sel.RoomID + " is selected twice")
		}

		seen[sel.RoomID] = true

		rooms = append(rooms, Room{RoomID: room.ID, Name: room.Name, Price: room.PricePerNight, Quantity: max(sel.Quantity, 1)})
	}

	return rooms, nil
}
