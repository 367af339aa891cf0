package dto

type SlotAvailability struct {
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	SlotID     string `json:"slot_id"`
	Decision   string `json:"decision"`
	Bookable   bool   `json:"bookable"`
	Booked     int    `json:"booked"`
	Capacity   int    `json:"capacity"`
	Remaining  int    `json:"remaining"`
}

type Slot struct {
	ID        string `json:"id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
	Bookable  bool   `json:"bookable"`
}

type DaySlots struct {
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Decision   string `json:"decision"`
	Slots      []Slot `json:"slots"`
}

// Remaining clamps the free capacity at zero.
func Remaining(booked, capacity int) int {
	if booked >= capacity {
		return 0
	}
	return capacity - booked
}
