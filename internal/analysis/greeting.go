package analysis

import "time"

const (
	GreetingMorning = "Доброе утро!"
	GreetingDay     = "Добрый день!"
	GreetingEvening = "Добрый вечер!"
	GreetingNight   = "Доброй ночи!"
)

// Greeting picks the salutation for the time of day of t.
func Greeting(t time.Time) string {
	minutes := t.Hour()*60 + t.Minute()
	switch {
	case minutes < 12*60:
		return GreetingMorning
	case minutes < 18*60:
		return GreetingDay
	case minutes < 22*60:
		return GreetingEvening
	default:
		return GreetingNight
	}
}
