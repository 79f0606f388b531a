package services

import "strings"

const (
	StationSurgery = "ห้องยาในศัลยกรรม"
	StationOPD     = "ห้องจ่ายยาผู้ป่วยนอก"

	RoomEyeClinic = "คลินิกตา"
	RoomEmergency = "ห้องจ่ายยาอุบัติเหตุฉุกเฉิน"
)

type Station struct {
	Name            string `json:"name"`
	DefaultDestRoom string `json:"default_dest_room"`
}

var stations = []Station{
	{Name: StationSurgery, DefaultDestRoom: RoomEmergency},
	{Name: StationOPD, DefaultDestRoom: RoomEyeClinic},
}

func Stations() []Station {
	result := make([]Station, len(stations))
	copy(result, stations)
	return result
}

func IsStation(name string) bool {
	_, ok := findStation(name)
	return ok
}

// DefaultDestRoom is the stock destination offered for a station.
func DefaultDestRoom(stationName string) string {
	station, ok := findStation(stationName)
	if !ok {
		return ""
	}
	return station.DefaultDestRoom
}

func findStation(name string) (Station, bool) {
	trimmed := strings.TrimSpace(name)
	for _, station := range stations {
		if station.Name == trimmed {
			return station, true
		}
	}
	return Station{}, false
}
