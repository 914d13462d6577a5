package game

// StatusKind состояние раунда для экрана статуса
type StatusKind string

const (
	StatusReady    StatusKind = "ready"
	StatusInFlight StatusKind = "in_flight"
	StatusPostHit  StatusKind = "post_hit"
	StatusBlocked  StatusKind = "blocked"
	StatusGoal     StatusKind = "goal"
)

// Status текст и цвет, которые показывает клиент
type Status struct {
	Kind  StatusKind `json:"kind"`
	Text  string     `json:"text"`
	Color string     `json:"color"`
}

var statuses = map[StatusKind]Status{
	StatusReady:    {Kind: StatusReady, Text: "SIAP!", Color: "#00FF00"},
	StatusInFlight: {Kind: StatusInFlight, Text: "BOLA TERBANG...", Color: "#FFFFFF"},
	StatusPostHit:  {Kind: StatusPostHit, Text: "TIANG!", Color: "#FFFF00"},
	StatusBlocked:  {Kind: StatusBlocked, Text: "DIBLOKIR!", Color: "#FF0000"},
	StatusGoal:     {Kind: StatusGoal, Text: "GOOOOL!!!", Color: "#00FF00"},
}

// StatusFor возвращает фиксированную пару текст+цвет
func StatusFor(kind StatusKind) Status {
	return statuses[kind]
}
