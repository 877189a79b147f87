package models

// DashboardSummary is the front-desk overview for one day.
type DashboardSummary struct {
	Date               Date               `json:"date"`
	TodayCheckIns      int                `json:"today_check_ins"`
	TodayCheckOuts     int                `json:"today_check_outs"`
	ActiveReservations int                `json:"active_reservations"`
	PendingCount       int                `json:"pending_reservations"`
	OccupiedRooms      int                `json:"occupied_rooms"`
	TotalRooms         int                `json:"total_rooms"`
	OccupancyRate      float64            `json:"occupancy_rate"`
	RoomsByStatus      map[RoomStatus]int `json:"rooms_by_status"`
}

// CalendarDay lists reservations occupying the night of Date.
type CalendarDay struct {
	Date         Date            `json:"date"`
	Reservations []CalendarEntry `json:"reservations"`
}

type CalendarEntry struct {
	ReservationID int64             `json:"reservation_id"`
	RoomID        int64             `json:"room_id"`
	RoomNumber    string            `json:"room_number"`
	CustomerName  string            `json:"customer_name"`
	Status        ReservationStatus `json:"status"`
	CheckInDate   Date              `json:"check_in_date"`
	CheckOutDate  Date              `json:"check_out_date"`
}

type Calendar struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// RoomAvailability is the answer to an availability query for one room.
type RoomAvailability struct {
	RoomID                int64  `json:"room_id"`
	RoomNumber            string `json:"room_number"`
	CheckInDate           Date   `json:"check_in_date"`
	CheckOutDate          Date   `json:"check_out_date"`
	Available             bool   `json:"available"`
	Reason                string `json:"reason,omitempty"`
	ConflictReservationID int64  `json:"conflict_reservation_id,omitempty"`
}
