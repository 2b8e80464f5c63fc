package quote_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"homestay/infras/otel/mocks"
	"homestay/internal/domains/booking/model"
	"homestay/internal/domains/booking/model/dto"
	"homestay/internal/domains/booking/quote"
	homestayMocks "homestay/internal/domains/homestay/mocks"
	homestayModel "homestay/internal/domains/homestay/model"
	roomMocks "homestay/internal/domains/room/mocks"
	roomModel "homestay/internal/domains/room/model"
	"homestay/shared/constant"
	"homestay/shared/failure"
	"homestay/shared/timezone"
)

const (
	homestayA = "0b7c3a52-54a4-4c3a-9d51-3a1f6a9b0001"
	room1     = "0b7c3a52-54a4-4c3a-9d51-3a1f6a9b0101"
	room2     = "0b7c3a52-54a4-4c3a-9d51-3a1f6a9b0102"
)

func stay(nights int, bookingType string, rooms ...model.RoomSelection) dto.StayRequest {
	checkIn := timezone.Today().AddDate(0, 0, 7)

	return dto.StayRequest{
		HomestayID:  homestayA,
		CheckIn:     checkIn.Format(constant.DateOnlyFormat),
		CheckOut:    checkIn.AddDate(0, 0, nights).Format(constant.DateOnlyFormat),
		Guests:      2,
		BookingType: bookingType,
		Rooms:       rooms,
	}
}

func setup(t *testing.T) (*homestayMocks.MockHomestay, *roomMocks.MockRoom, quote.Quoter) {
	ctrl := gomock.NewController(t)

	homestays := homestayMocks.NewMockHomestay(ctrl)
	rooms := roomMocks.NewMockRoom(ctrl)

	return homestays, rooms, quote.New(homestays, rooms, mocks.NewOtel())
}

func activeHomestay() homestayModel.Homestay {
	return homestayModel.Homestay{ID: homestayA, OwnerID: "owner-1", Name: "A", PricePerNight: 500000, MaxGuests: 4, Active: true}
}

func TestQuoter_Quote(t *testing.T) {
	t.Run("whole homestay", func(t *testing.T) {
		homestays, _, quoter := setup(t)
		homestays.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeHomestay(), nil)

		res, err := quoter.Quote(context.Background(), stay(3, model.TypeWhole))
		require.NoError(t, err)

		assert.Equal(t, int64(1500000), res.Total)
		assert.Equal(t, 3, res.Nights)
		assert.Equal(t, "owner-1", res.OwnerID)
		assert.Empty(t, res.Rooms)
	})

	t.Run("rooms use stored prices", func(t *testing.T) {
		homestays, rooms, quoter := setup(t)
		homestays.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeHomestay(), nil)
		rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]roomModel.Room{
			{ID: room1, HomestayID: homestayA, PricePerNight: 200000, Active: true},
			{ID: room2, HomestayID: homestayA, PricePerNight: 150000, Active: true},
		}, nil)

		res, err := quoter.Quote(context.Background(), stay(2, model.TypeRoom,
			model.RoomSelection{RoomID: room1}, model.RoomSelection{RoomID: room2}))
		require.NoError(t, err)

		assert.Equal(t, int64(700000), res.Total)
		assert.Len(t, res.Rooms, 2)
		assert.Equal(t, 1, res.Rooms[0].Quantity)
	})

	t.Run("room from another homestay", func(t *testing.T) {
		homestays, rooms, quoter := setup(t)
		homestays.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeHomestay(), nil)
		rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]roomModel.Room{}, nil)

		_, err := quoter.Quote(context.Background(), stay(2, model.TypeRoom, model.RoomSelection{RoomID: room1}))
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("too many guests", func(t *testing.T) {
		homestays, _, quoter := setup(t)
		h := activeHomestay()
		h.MaxGuests = 1
		homestays.EXPECT().Get(gomock.Any(), gomock.Any()).Return(h, nil)

		_, err := quoter.Quote(context.Background(), stay(1, model.TypeWhole))
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("inactive homestay", func(t *testing.T) {
		homestays, _, quoter := setup(t)
		h := activeHomestay()
		h.Active = false
		homestays.EXPECT().Get(gomock.Any(), gomock.Any()).Return(h, nil)

		_, err := quoter.Quote(context.Background(), stay(1, model.TypeWhole))
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("check-out before check-in", func(t *testing.T) {
		_, _, quoter := setup(t)

		_, err := quoter.Quote(context.Background(), stay(0, model.TypeWhole))
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}
