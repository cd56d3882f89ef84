package memory

import (
	"regexp"
	"strings"
	"time"
)

// factPattern binds one slot-filling regexp to the category its capture
// produces. Patterns are matched against the lowercased utterance; the
// first capture group is the slot value.
type factPattern struct {
	re       *regexp.Regexp
	category FactCategory
	render   func(value string) string
}

// The pattern table is fixed: adding a category is a schema change, not
// something utterances can do at runtime.
var factPatterns = []factPattern{
	{
		re:       regexp.MustCompile(`(?:my name is|call me)\s+(\w+)`),
		category: CategoryName,
		render:   func(v string) string { return "User's name is " + strings.Title(v) }, //nolint:staticcheck
	},
	{
		re:       regexp.MustCompile(`i (?:live|am) (?:in|at)\s+([^.,!?]+)`),
		category: CategoryLocation,
		render:   func(v string) string { return "User lives in " + v },
	},
	{
		re:       regexp.MustCompile(`i work (?:as|at)\s+([^.,!?]+)`),
		category: CategoryOccupation,
		render:   func(v string) string { return "User works as/at " + v },
	},
	{
		re:       regexp.MustCompile(`i (?:like|love|enjoy)\s+([^.,!?]+)`),
		category: CategoryLike,
		render:   func(v string) string { return "User likes " + v },
	},
	{
		re:       regexp.MustCompile(`i (?:don't like|dislike|hate)\s+([^.,!?]+)`),
		category: CategoryDislike,
		render:   func(v string) string { return "User dislikes " + v },
	},
	{
		re:       regexp.MustCompile(`my (?:favorite|favourite)\s+(\w+\s+is\s+[^.,!?]+)`),
		category: CategoryFavorite,
		render: func(v string) string {
			return "User's favorite " + v
		},
	},
	{
		re:       regexp.MustCompile(`i have (?:a|an)\s+([^.,!?]+)`),
		category: CategoryPossession,
		render:   func(v string) string { return "User has a " + v },
	},
	{
		re:       regexp.MustCompile(`i (?:want|would like) to\s+([^.,!?]+)`),
		category: CategoryGoal,
		render:   func(v string) string { return "User wants to " + v },
	},
	{
		re:       regexp.MustCompile(`i(?:'m| am) (?:going to|planning to)\s+([^.,!?]+)`),
		category: CategoryIntent,
		render:   func(v string) string { return "User is planning to " + v },
	},
}

// Lexical sentiment tables. Matching is substring-per-word, so "loved"
// still hits "love".
var positiveWords = []string{
	"happy", "excited", "great", "wonderful", "amazing", "love", "fantastic",
	"awesome", "excellent", "perfect", "thank", "appreciate", "helpful",
	"nice", "good", "glad",
}

var negativeWords = []string{
	"sad", "frustrated", "angry", "annoying", "bad", "terrible", "awful",
	"hate", "dislike", "upset", "disappointed", "confused", "worried",
}

var topicKeywords = map[TopicLabel][]string{
	TopicTechnology:    {"computer", "software", "code", "programming", "tech", "ai", "robot"},
	TopicWeather:       {"weather", "temperature", "rain", "snow", "sunny", "cloudy", "forecast"},
	TopicEntertainment: {"movie", "music", "game", "show", "series", "watch", "play"},
	TopicWork:          {"work", "job", "office", "project", "meeting", "colleague", "boss"},
	TopicPersonal:      {"family", "friend", "relationship", "home", "life", "personal"},
	TopicHealth:        {"health", "exercise", "fitness", "sick", "doctor", "medical"},
	TopicFood:          {"food", "eat", "cook", "restaurant", "dinner", "lunch", "breakfast"},
	TopicTravel:        {"travel", "trip", "vacation", "visit", "country", "city"},
	TopicLearning:      {"learn", "study", "education", "school", "course", "teach"},
	TopicHobbies:       {"hobby", "interest", "passion", "collect", "craft", "art"},
}

// Extraction is everything the extractor learned from one utterance.
type Extraction struct {
	Facts   []Fact
	Emotion Emotion
	Topics  []TopicLabel
}

// Extract classifies a single utterance into fact candidates, an emotion
// reading, and a topic set. It is a pure function: no pattern match means
// an empty fact list, never an error, and nothing is mutated.
func Extract(utterance string) Extraction {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	return Extraction{
		Facts:   extractFacts(lower),
		Emotion: detectEmotion(utterance, lower),
		Topics:  identifyTopics(lower),
	}
}

func extractFacts(lower string) []Fact {
	var facts []Fact
	now := time.Now()

	for _, p := range factPatterns {
		for _, match := range p.re.FindAllStringSubmatch(lower, -1) {
			value := strings.TrimSpace(match[1])
			if len(value) < 2 {
				continue
			}
			facts = append(facts, Fact{
				Text:     p.render(value),
				Category: p.category,
				LastSeen: now,
			})
		}
	}
	return facts
}

// detectEmotion counts sentiment hits per word and scales intensity up by
// exclamation emphasis. Equal positive and negative hits read as neutral.
func detectEmotion(raw, lower string) Emotion {
	words := strings.Fields(lower)
	if len(words) == 0 {
		return Emotion{}
	}

	var pos, neg int
	for _, w := range words {
		for _, p := range positiveWords {
			if strings.Contains(w, p) {
				pos++
				break
			}
		}
		for _, n := range negativeWords {
			if strings.Contains(w, n) {
				neg++
				break
			}
		}
	}

	if pos == neg {
		return Emotion{}
	}

	hits := pos
	polarity := 1
	if neg > pos {
		hits = neg
		polarity = -1
	}

	intensity := float64(hits) / float64(len(words)) * 10
	intensity += float64(strings.Count(raw, "!")) * 0.1
	if intensity > 1.0 {
		intensity = 1.0
	}

	return Emotion{Polarity: polarity, Intensity: intensity}
}

func identifyTopics(lower string) []TopicLabel {
	var topics []TopicLabel
	for _, label := range allTopicLabels {
		for _, kw := range topicKeywords[label] {
			if strings.Contains(lower, kw) {
				topics = append(topics, label)
				break
			}
		}
	}
	return topics
}

// allTopicLabels fixes the iteration order so extraction output is
// deterministic.
var allTopicLabels = []TopicLabel{
	TopicTechnology, TopicWeather, TopicEntertainment, TopicWork,
	TopicPersonal, TopicHealth, TopicFood, TopicTravel,
	TopicLearning, TopicHobbies,
}
