package entity

// Settings holds a user's notification preferences. The engine reads them to
// gate and route delivery; the user writes them through the settings surface.
type Settings struct {
	UserID               int64
	NotificationsEnabled bool
	SoundEnabled         bool
	PushEnabled          bool
	BrowserEnabled       bool
	// FirstReminderMinutes and SecondReminderMinutes are minutes-before-deadline
	// offsets used by the deadline-reminder producer. Zero disables the slot.
	FirstReminderMinutes  int32
	SecondReminderMinutes int32
	// Timezone is an IANA zone name, e.g. "Asia/Jakarta".
	Timezone string
}

// DefaultSettings is what a user without a settings row gets: everything on.
// Push stays a no-op until the user registers a subscription.
func DefaultSettings(userID int64) Settings {
	return Settings{
		UserID:                userID,
		NotificationsEnabled:  true,
		SoundEnabled:          true,
		PushEnabled:           true,
		BrowserEnabled:        true,
		FirstReminderMinutes:  60,
		SecondReminderMinutes: 10,
		Timezone:              "UTC",
	}
}

// Recipient is a user eligible for rule fan-out together with the timezone
// needed to resolve their local fire instant.
type Recipient struct {
	UserID   int64
	Timezone string
}
