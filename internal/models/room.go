package models

import (
	"strings"
	"time"
)

type RoomType string

const (
	RoomTypeSingle RoomType = "single"
	RoomTypeDouble RoomType = "double"
	RoomTypeTriple RoomType = "triple"
	RoomTypeFamily RoomType = "family"
	RoomTypeSuite  RoomType = "suite"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomTypeSingle, RoomTypeDouble, RoomTypeTriple, RoomTypeFamily, RoomTypeSuite:
		return true
	}
	return false
}

// RoomStatus is a cached projection. Occupied is derived from check-in/check-out,
// the remaining values are set by staff.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomCleaning    RoomStatus = "cleaning"
	RoomMaintenance RoomStatus = "maintenance"
	RoomOutOfOrder  RoomStatus = "out_of_order"
)

var AllRoomStatuses = []RoomStatus{RoomAvailable, RoomOccupied, RoomCleaning, RoomMaintenance, RoomOutOfOrder}

func (s RoomStatus) Valid() bool {
	for _, v := range AllRoomStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Bookable reports whether new stays may be placed on a room in this status.
func (s RoomStatus) Bookable() bool {
	return s != RoomMaintenance && s != RoomOutOfOrder
}

type Amenity string

const (
	AmenityWiFi            Amenity = "wifi"
	AmenityTV              Amenity = "tv"
	AmenityMinibar         Amenity = "minibar"
	AmenityAirConditioning Amenity = "air_conditioning"
	AmenityBalcony         Amenity = "balcony"
	AmenitySeaView         Amenity = "sea_view"
	AmenityPrivateBathroom Amenity = "private_bathroom"
)

var knownAmenities = map[Amenity]bool{
	AmenityWiFi:            true,
	AmenityTV:              true,
	AmenityMinibar:         true,
	AmenityAirConditioning: true,
	AmenityBalcony:         true,
	AmenitySeaView:         true,
	AmenityPrivateBathroom: true,
}

func (a Amenity) Valid() bool { return knownAmenities[a] }

// JoinAmenities renders the set as a comma-separated column value.
func JoinAmenities(list []Amenity) string {
	parts := make([]string, 0, len(list))
	for _, a := range list {
		parts = append(parts, string(a))
	}
	return strings.Join(parts, ",")
}

func SplitAmenities(raw string) []Amenity {
	if strings.TrimSpace(raw) == "" {
		return []Amenity{}
	}
	parts := strings.Split(raw, ",")
	out := make([]Amenity, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, Amenity(p))
		}
	}
	return out
}

type Room struct {
	ID          int64      `json:"id" yaml:"-"`
	Number      string     `json:"room_number" yaml:"room_number"`
	Type        RoomType   `json:"room_type" yaml:"room_type"`
	Capacity    int        `json:"capacity" yaml:"capacity"`
	NightlyRate Money      `json:"nightly_rate" yaml:"nightly_rate"`
	Amenities   []Amenity  `json:"amenities" yaml:"amenities"`
	Description string     `json:"description" yaml:"description"`
	Status      RoomStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"-"`
}

type RoomFilter struct {
	Status RoomStatus
	Type   RoomType
}
