package service

import (
	"strings"

	"github.com/menticure/backend/pkg/model"
)

// CrisisResponse is returned verbatim whenever the crisis gate trips.
// It must never be altered by downstream processing.
const CrisisResponse = "I'm really concerned about what you're sharing. Please reach out for help right now: " +
	"call or text 988 (Suicide & Crisis Lifeline, 24/7), or text HOME to 741741 (Crisis Text Line). " +
	"If you are in immediate danger, call 911. You don't have to go through this alone - " +
	"a trained counselor is ready to listen."

// crisisPhrases is the fixed self-harm phrase list for the crisis gate.
// Matching is lowercase substring containment, not tokenization, so
// phrasing variants around these stems still trip the gate.
var crisisPhrases = []string{
	"kill myself",
	"killing myself",
	"suicide",
	"suicidal",
	"want to die",
	"end my life",
	"ending my life",
	"self harm",
	"self-harm",
	"hurt myself",
	"hurting myself",
	"end it all",
	"no reason to live",
	"better off dead",
	"don't want to be alive",
}

// IsCrisisMessage reports whether the message contains self-harm language.
// This gate runs before any other processing on every message and cannot
// be bypassed.
func IsCrisisMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range crisisPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// toneKeywords are checked in priority order; the first set with a match
// wins. This is a coarse heuristic, not sentiment analysis.
var toneKeywords = []struct {
	tone     model.EmotionalTone
	keywords []string
}{
	{model.ToneAnxious, []string{"anxious", "anxiety", "worried", "worry", "panic", "nervous", "scared", "afraid"}},
	{model.ToneDepressed, []string{"depressed", "depression", "hopeless", "worthless", "empty", "numb", "sad", "crying"}},
	{model.ToneAngry, []string{"angry", "furious", "rage", "irritated", "frustrated", "hate"}},
	{model.ToneStressed, []string{"stressed", "stress", "overwhelmed", "pressure", "burnout", "burned out", "exhausted"}},
	{model.ToneLonely, []string{"lonely", "alone", "isolated", "no one", "nobody"}},
	{model.TonePositive, []string{"happy", "great", "good", "grateful", "excited", "better", "calm", "proud", "hopeful"}},
}

// ClassifyTone assigns a coarse emotional tone to a message via
// first-match-wins keyword lookup. Returns neutral when nothing matches.
func ClassifyTone(message string) model.EmotionalTone {
	lower := strings.ToLower(message)
	for _, set := range toneKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.tone
			}
		}
	}
	return model.ToneNeutral
}

// Fixed vocabularies for pattern extraction. Like the tone classifier,
// these are literal substring tables with no hidden state.
var (
	activityTerms = []string{
		"walking", "running", "reading", "music", "drawing", "painting",
		"cooking", "gardening", "yoga", "swimming", "hiking", "gaming",
		"journaling", "dancing",
	}
	copingTerms = []string{
		"meditation", "breathing", "exercise", "therapy", "journaling",
		"talking to friends", "walking", "music", "sleep",
	}
	triggerTerms = []string{
		"work", "school", "exams", "family", "relationship", "breakup",
		"money", "bills", "health", "deadlines", "news",
	}
)

// toneToMoodTag maps a classified tone onto the free-form mood vocabulary
// used by mental-state records.
var toneToMoodTag = map[model.EmotionalTone]string{
	model.ToneAnxious:   "anxious",
	model.ToneDepressed: "depressed",
	model.ToneAngry:     "negative",
	model.ToneStressed:  "negative",
	model.ToneLonely:    "negative",
	model.TonePositive:  "positive",
	model.ToneNeutral:   "neutral",
}

// DeriveMentalState builds the inferred snapshot appended after a chat
// turn. Extraction is literal substring matching against the fixed
// tables; duplicates across turns feed the frequency ranking.
func DeriveMentalState(message string, tone model.EmotionalTone) model.MentalStateRecord {
	lower := strings.ToLower(message)

	matchTerms := func(terms []string) []string {
		var matched []string
		for _, term := range terms {
			if strings.Contains(lower, term) {
				matched = append(matched, term)
			}
		}
		return matched
	}

	var keywords []string
	for _, set := range toneKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				keywords = append(keywords, kw)
			}
		}
	}

	intensity := 3 + len(keywords)
	if intensity > 10 {
		intensity = 10
	}

	style := model.StyleSupportive
	if tone == model.ToneDepressed || tone == model.ToneLonely {
		style = model.StyleGentle
	}

	return model.MentalStateRecord{
		Mood:                toneToMoodTag[tone],
		Intensity:           intensity,
		Keywords:            keywords,
		Emotions:            []string{string(tone)},
		PreferredActivities: matchTerms(activityTerms),
		CopingMechanisms:    matchTerms(copingTerms),
		Triggers:            matchTerms(triggerTerms),
		CommunicationStyle:  style,
	}
}
