package models

import "time"

// TimePeriod is the part of the day an activity is planned for
type TimePeriod string

const (
	PeriodMorning   TimePeriod = "morning"
	PeriodAfternoon TimePeriod = "afternoon"
	PeriodEvening   TimePeriod = "evening"
)

var periodRank = map[TimePeriod]int{
	PeriodMorning:   0,
	PeriodAfternoon: 1,
	PeriodEvening:   2,
}

// Valid reports whether p is a known period
func (p TimePeriod) Valid() bool {
	_, ok := periodRank[p]
	return ok
}

// Rank orders periods within a day
func (p TimePeriod) Rank() int {
	return periodRank[p]
}

// ActivityType tags an activity or idea for display
type ActivityType string

const (
	TypeSightseeing ActivityType = "sightseeing"
	TypeFood        ActivityType = "food"
	TypeTransport   ActivityType = "transport"
	TypeLodging     ActivityType = "lodging"
	TypeActivity    ActivityType = "activity"
	TypeShopping    ActivityType = "shopping"
	TypeOther       ActivityType = "other"
)

// Badge is the color and icon a client renders for an activity type
type Badge struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var badges = map[ActivityType]Badge{
	TypeSightseeing: {Color: "blue", Icon: "camera"},
	TypeFood:        {Color: "orange", Icon: "utensils"},
	TypeTransport:   {Color: "slate", Icon: "bus"},
	TypeLodging:     {Color: "purple", Icon: "bed"},
	TypeActivity:    {Color: "green", Icon: "ticket"},
	TypeShopping:    {Color: "pink", Icon: "shopping-bag"},
	TypeOther:       {Color: "gray", Icon: "map-pin"},
}

// Valid reports whether t is a known type
func (t ActivityType) Valid() bool {
	_, ok := badges[t]
	return ok
}

// Badge returns the display badge, falling back to the "other" badge
func (t ActivityType) Badge() Badge {
	if b, ok := badges[t]; ok {
		return b
	}
	return badges[TypeOther]
}

// Activity is a single itinerary entry
type Activity struct {
	ID         string       `json:"id"`
	TripID     string       `json:"trip_id"`
	Day        int          `json:"day"`
	Period     TimePeriod   `json:"period"`
	Type       ActivityType `json:"type"`
	Badge      Badge        `json:"badge"`
	Title      string       `json:"title"`
	Notes      string       `json:"notes"`
	Location   string       `json:"location"`
	StartTime  string       `json:"start_time,omitempty"`
	Cost       *float64     `json:"cost,omitempty"`
	OrderIndex int          `json:"order_index"`
	CreatedBy  string       `json:"created_by"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// GetID returns the activity ID
func (a *Activity) GetID() string { return a.ID }

// ItineraryDay groups the activities of one trip day
type ItineraryDay struct {
	Day        int         `json:"day"`
	Activities []*Activity `json:"activities"`
}

// LinkPreview holds metadata scraped from a shared link
type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SiteName    string `json:"site_name"`
}

// Empty reports whether no metadata was found
func (l *LinkPreview) Empty() bool {
	return l == nil || (l.Title == "" && l.Description == "" && l.Image == "")
}

// Idea is an untriaged suggestion attached to a trip
type Idea struct {
	ID          string       `json:"id"`
	TripID      string       `json:"trip_id"`
	CreatedBy   string       `json:"created_by"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	Type        ActivityType `json:"type"`
	Tags        []string     `json:"tags"`
	Preview     *LinkPreview `json:"preview,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// GetID returns the idea ID
func (i *Idea) GetID() string { return i.ID }

// Photo is an image uploaded to a trip
type Photo struct {
	ID          string    `json:"id"`
	TripID      string    `json:"trip_id"`
	UserID      string    `json:"user_id"`
	StorageKey  string    `json:"-"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Caption     string    `json:"caption"`
	Uploaded    bool      `json:"uploaded"`
	TakenAt     time.Time `json:"taken_at"`
	CreatedAt   time.Time `json:"created_at"`
}
