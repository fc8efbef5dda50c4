package model

import "time"

// MoodLevel is the five-point scale used by explicit mood check-ins.
type MoodLevel string

const (
	MoodVerySad   MoodLevel = "very_sad"
	MoodSad       MoodLevel = "sad"
	MoodNeutral   MoodLevel = "neutral"
	MoodHappy     MoodLevel = "happy"
	MoodVeryHappy MoodLevel = "very_happy"
)

// MoodRecord is a user-submitted mood check-in. Records are immutable
// once inserted.
type MoodRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Mood         MoodLevel `json:"mood"`
	SleepHours   *float64  `json:"sleep_hours,omitempty"`
	AnxietyLevel *int      `json:"anxiety_level,omitempty"`
	StressLevel  *int      `json:"stress_level,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CommunicationStyle is how the assistant should address the user.
type CommunicationStyle string

const (
	StyleSupportive CommunicationStyle = "supportive"
	StyleDirect     CommunicationStyle = "direct"
	StyleGentle     CommunicationStyle = "gentle"
)

// MentalStateRecord is an inferred emotional snapshot appended after each
// chat turn. Its mood field is a free-form tag, not the MoodLevel enum;
// the two vocabularies are intentionally kept separate.
type MentalStateRecord struct {
	ID                  string             `json:"id"`
	UserID              string             `json:"user_id"`
	SessionID           *string            `json:"session_id,omitempty"`
	Mood                string             `json:"mood"`
	Intensity           int                `json:"intensity"`
	Keywords            []string           `json:"keywords,omitempty"`
	Emotions            []string           `json:"emotions,omitempty"`
	PreferredActivities []string           `json:"preferred_activities,omitempty"`
	CopingMechanisms    []string           `json:"coping_mechanisms,omitempty"`
	Triggers            []string           `json:"triggers,omitempty"`
	CommunicationStyle  CommunicationStyle `json:"communication_style"`
	RecordedAt          time.Time          `json:"recorded_at"`
	CreatedAt           time.Time          `json:"created_at"`
}

// EmotionalTone is the coarse tone classification of a chat message.
type EmotionalTone string

const (
	ToneAnxious   EmotionalTone = "anxious"
	ToneDepressed EmotionalTone = "depressed"
	ToneAngry     EmotionalTone = "angry"
	ToneStressed  EmotionalTone = "stressed"
	ToneLonely    EmotionalTone = "lonely"
	TonePositive  EmotionalTone = "positive"
	ToneNeutral   EmotionalTone = "neutral"
)

// ChatSession groups the turns of one continuous conversation.
type ChatSession struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	MessageCount     int       `json:"message_count"`
	EmotionalSummary *string   `json:"emotional_summary,omitempty"`
	SessionStart     time.Time `json:"session_start"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ChatTurn is one message/response exchange within a session.
// SequenceNumber increases monotonically within the session.
type ChatTurn struct {
	ID             string        `json:"id"`
	SessionID      string        `json:"session_id"`
	UserID         string        `json:"user_id"`
	Message        string        `json:"message"`
	Response       string        `json:"response"`
	EmotionalTone  EmotionalTone `json:"emotional_tone"`
	SequenceNumber int           `json:"sequence_number"`
	CreatedAt      time.Time     `json:"created_at"`
}

// CheckInStatus is the self-reported state of a daily check-in.
type CheckInStatus string

const (
	CheckInGreat      CheckInStatus = "great"
	CheckInOkay       CheckInStatus = "okay"
	CheckInStruggling CheckInStatus = "struggling"
)

// DailyCheckIn is at most one row per (user, date); writes are idempotent
// upserts keyed on that pair.
type DailyCheckIn struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Date      time.Time     `json:"date"`
	Status    CheckInStatus `json:"status"`
	Notes     *string       `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// UserStreak tracks consecutive daily check-ins.
type UserStreak struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	TotalCheckIns   int        `json:"total_checkins"`
	LastCheckInDate *time.Time `json:"last_checkin_date,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Badge is a milestone award; each badge name is earned at most once.
type Badge struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BadgeName string    `json:"badge_name"`
	BadgeType string    `json:"badge_type"`
	EarnedAt  time.Time `json:"earned_at"`
}

// TherapistProfile is the subset of a profile relevant to booking.
type TherapistProfile struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Specialty *string `json:"specialty,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// SessionStatus is the lifecycle state of a therapy session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionConfirmed SessionStatus = "confirmed"
	SessionCancelled SessionStatus = "cancelled"
	SessionCompleted SessionStatus = "completed"
)

// TherapySession is a booked appointment with a therapist.
type TherapySession struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	TherapistID string        `json:"therapist_id"`
	SessionDate time.Time     `json:"session_date"`
	SessionType string        `json:"session_type"`
	Status      SessionStatus `json:"status"`
	Notes       *string       `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
