package queue

const (
	TypeTurnRecord = "turn:record"
)
