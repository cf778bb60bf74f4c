// Package resources holds the static content shown around the chat: crisis
// contacts, quick replies, chat help, self-help exercises, and the mood and
// sleep check-in options.
package resources

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Contact is a crisis resource reachable by phone or text.
type Contact struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Detail string `json:"detail,omitempty"`
	URI    string `json:"uri"`
}

// Helpline is the national toll-free mental-health crisis line.
var Helpline = Contact{Name: "Mental Health Helpline", Number: "1166", Detail: "Toll-free", URI: "tel:1166"}

// CrisisContacts lists the helpline first, then the other emergency numbers.
func CrisisContacts() []Contact {
	return []Contact{
		Helpline,
		{Name: "Police Emergency", Number: "100", URI: "tel:100"},
		{Name: "Ambulance", Number: "102", URI: "tel:102"},
		{Name: "Crisis Text Line", Number: "1166", Detail: `Text "TALK" to 1166`, URI: "sms:1166?body=TALK"},
	}
}

// QuickReplies are offered while the conversation holds only the greeting.
func QuickReplies() []string {
	return []string{
		"I'm feeling anxious",
		"I need help with sleep",
		"I'm feeling sad",
		"Tips for meditation",
	}
}

// ChatHelp explains how to use the chat.
func ChatHelp() []string {
	return []string{
		"Type your message and press Enter or tap Send",
		"Try questions about anxiety, sleep, or mood",
		"Your conversation is private",
		"This is AI assistance, not professional therapy",
	}
}

// Mood is one selectable entry of the mood log.
type Mood struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Moods returns the mood options with their Nepali labels.
func Moods() []Mood {
	return []Mood{
		{Emoji: "😊", Label: "Happy / खुशी", Value: "happy"},
		{Emoji: "😌", Label: "Calm / शान्त", Value: "calm"},
		{Emoji: "😐", Label: "Neutral / सामान्य", Value: "neutral"},
		{Emoji: "😔", Label: "Sad / दुःखी", Value: "sad"},
		{Emoji: "😰", Label: "Anxious / चिन्तित", Value: "anxious"},
		{Emoji: "😡", Label: "Angry / रिसाएको", Value: "angry"},
	}
}

// MoodEmoji returns the emoji for value, or a blank face when unknown.
func MoodEmoji(value string) string {
	for _, m := range Moods() {
		if m.Value == value {
			return m.Emoji
		}
	}
	return "😶"
}

var (
	ErrMoodRequired     = errors.New("please select a mood")
	ErrUnknownMood      = errors.New("unknown mood")
	ErrUnknownSleepSpan = errors.New("unknown sleep duration")
)

// MoodEntry acknowledges one mood check-in. Entries are not kept anywhere.
type MoodEntry struct {
	Mood     string    `json:"mood"`
	Emoji    string    `json:"emoji"`
	Notes    string    `json:"notes,omitempty"`
	LoggedAt time.Time `json:"loggedAt"`
	Message  string    `json:"message"`
}

// NewMoodEntry validates a mood check-in.
func NewMoodEntry(mood, notes string) (MoodEntry, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return MoodEntry{}, ErrMoodRequired
	}
	if !slices.ContainsFunc(Moods(), func(m Mood) bool { return m.Value == mood }) {
		return MoodEntry{}, fmt.Errorf("%w: %q", ErrUnknownMood, mood)
	}
	return MoodEntry{
		Mood:     mood,
		Emoji:    MoodEmoji(mood),
		Notes:    strings.TrimSpace(notes),
		LoggedAt: time.Now().UTC(),
		Message:  "Mood logged successfully!",
	}, nil
}

// Exercise is a self-help practice with ordered steps.
type Exercise struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// Exercises returns the self-help catalog.
func Exercises() []Exercise {
	return []Exercise{
		{
			ID:          "breathing",
			Title:       "Deep Breathing",
			Description: "A simple technique to help you relax and reduce anxiety.",
			Steps: []string{
				"Find a comfortable position sitting or lying down.",
				"Place one hand on your chest and the other on your stomach.",
				"Breathe in slowly through your nose for 4 seconds.",
				"Hold your breath for 2 seconds.",
				"Exhale slowly through your mouth for 6 seconds.",
				"Repeat 5-10 times.",
			},
		},
		{
			ID:          "grounding",
			Title:       "5-4-3-2-1 Grounding",
			Description: "This technique helps bring your attention to the present moment.",
			Steps: []string{
				"Notice 5 things you can see.",
				"Notice 4 things you can touch or feel.",
				"Notice 3 things you can hear.",
				"Notice 2 things you can smell.",
				"Notice 1 thing you can taste.",
			},
		},
		{
			ID:          "gratitude",
			Title:       "Gratitude Practice",
			Description: "Focus on positive aspects of your life to improve your mood.",
			Steps: []string{
				"Think of 3 things you're grateful for today.",
				"They can be small things, like a good meal or nice weather.",
				"For each one, spend a moment appreciating why you're grateful for it.",
				"Try to feel the positive emotions associated with each item.",
			},
		},
		{
			ID:          "bodyscan",
			Title:       "Body Scan Relaxation",
			Description: "A practice to release tension from your body.",
			Steps: []string{
				"Lie down or sit comfortably with your eyes closed.",
				"Focus on your feet and notice any sensations.",
				"Gradually move your attention up through your body.",
				"For each body part, notice any tension and consciously relax it.",
				"Continue until you reach the top of your head.",
			},
		},
	}
}

// ExerciseByID looks up one exercise of the catalog.
func ExerciseByID(id string) (Exercise, bool) {
	for _, e := range Exercises() {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}

// DefaultSleepHours is preselected on the sleep check-in.
const DefaultSleepHours = "7h"

// SleepTip is shown above the sleep options.
const SleepTip = "Aim for 8+ hours of sleep for the best rest."

// SleepHours lists the selectable sleep durations, longest first.
func SleepHours() []string {
	return []string{"8h", "7h", "6h", "5h", "4h"}
}

// SleepEntry acknowledges one sleep check-in. Entries are not kept anywhere.
type SleepEntry struct {
	Hours    string    `json:"hours"`
	LoggedAt time.Time `json:"loggedAt"`
	Message  string    `json:"message"`
}

// NewSleepEntry validates a sleep check-in; an empty value means the default.
func NewSleepEntry(hours string) (SleepEntry, error) {
	hours = strings.TrimSpace(hours)
	if hours == "" {
		hours = DefaultSleepHours
	}
	if !slices.Contains(SleepHours(), hours) {
		return SleepEntry{}, fmt.Errorf("%w: %q", ErrUnknownSleepSpan, hours)
	}
	return SleepEntry{
		Hours:    hours,
		LoggedAt: time.Now().UTC(),
		Message:  fmt.Sprintf("Saved %s of sleep for last night", hours),
	}, nil
}
