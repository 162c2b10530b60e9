package domain

type RoomID string

// Room is a static meeting room definition. Occupancy is never stored here;
// it is derived from the participants whose RoomID matches.
type Room struct {
	ID       RoomID `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	Bounds   Rect   `json:"bounds" mapstructure:"bounds"`
	Capacity int    `json:"capacity" mapstructure:"capacity"`
}

type RoomInfo struct {
	ID        RoomID `json:"id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Occupancy int    `json:"occupancy"`
}

func (ri RoomInfo) Full() bool { return ri.Occupancy >= ri.Capacity }
