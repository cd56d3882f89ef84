package memory

import (
	"testing"
)

func TestExtract_NameAndLocation(t *testing.T) {
	ext := Extract("My name is Sarah and I live in Portland")

	if len(ext.Facts) != 2 {
		t.Fatalf("expected 2 facts, got %d: %+v", len(ext.Facts), ext.Facts)
	}
	if ext.Facts[0].Category != CategoryName {
		t.Errorf("first fact category: got %q, want %q", ext.Facts[0].Category, CategoryName)
	}
	if ext.Facts[0].Text != "User's name is Sarah" {
		t.Errorf("name fact text: got %q", ext.Facts[0].Text)
	}
	if ext.Facts[1].Category != CategoryLocation {
		t.Errorf("second fact category: got %q, want %q", ext.Facts[1].Category, CategoryLocation)
	}
	if ext.Facts[1].Text != "User lives in portland" {
		t.Errorf("location fact text: got %q", ext.Facts[1].Text)
	}
}

func TestExtract_FactCategories(t *testing.T) {
	cases := []struct {
		utterance string
		category  FactCategory
	}{
		{"call me Alex", CategoryName},
		{"I work as a nurse", CategoryOccupation},
		{"I love hiking in the mountains", CategoryLike},
		{"I hate traffic jams", CategoryDislike},
		{"my favorite color is blue", CategoryFavorite},
		{"I have a golden retriever", CategoryPossession},
		{"I want to learn piano", CategoryGoal},
		{"I'm planning to visit Japan", CategoryIntent},
	}

	for _, tc := range cases {
		ext := Extract(tc.utterance)
		found := false
		for _, f := range ext.Facts {
			if f.Category == tc.category {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%q: expected a %s fact, got %+v", tc.utterance, tc.category, ext.Facts)
		}
	}
}

func TestExtract_NoPatternMeansNoFacts(t *testing.T) {
	ext := Extract("the weather is okay today I guess")
	if len(ext.Facts) != 0 {
		t.Errorf("expected no facts, got %+v", ext.Facts)
	}
}

func TestExtract_EmptyUtterance(t *testing.T) {
	ext := Extract("")
	if len(ext.Facts) != 0 || len(ext.Topics) != 0 || ext.Emotion.Polarity != 0 {
		t.Errorf("empty utterance should extract nothing, got %+v", ext)
	}
}

func TestDetectEmotion_Positive(t *testing.T) {
	ext := Extract("I love this, it's amazing!")
	if ext.Emotion.Polarity != 1 {
		t.Errorf("polarity: got %d, want 1", ext.Emotion.Polarity)
	}
	// 2 hits over 5 words saturates intensity at 1.0.
	if ext.Emotion.Intensity != 1.0 {
		t.Errorf("intensity: got %f, want 1.0", ext.Emotion.Intensity)
	}
}

func TestDetectEmotion_Negative(t *testing.T) {
	ext := Extract("honestly the past week has left me feeling sad about how everything turned out")
	if ext.Emotion.Polarity != -1 {
		t.Errorf("polarity: got %d, want -1", ext.Emotion.Polarity)
	}
	if ext.Emotion.Intensity >= 1.0 {
		t.Errorf("diluted sentiment should not saturate, got %f", ext.Emotion.Intensity)
	}
}

func TestDetectEmotion_TieReadsNeutral(t *testing.T) {
	ext := Extract("I love it but I also hate it")
	if ext.Emotion.Polarity != 0 {
		t.Errorf("equal positive and negative hits should be neutral, got %d", ext.Emotion.Polarity)
	}
}

func TestDetectEmotion_ExclamationBoost(t *testing.T) {
	plain := Extract("the evening went by quietly and on the whole it was nice for all of us")
	excited := Extract("the evening went by quietly and on the whole it was nice for all of us!!!")

	if excited.Emotion.Intensity <= plain.Emotion.Intensity {
		t.Errorf("exclamations should raise intensity: %f vs %f",
			excited.Emotion.Intensity, plain.Emotion.Intensity)
	}
}

func TestIdentifyTopics_DeterministicOrder(t *testing.T) {
	ext := Extract("my computer broke at work today")

	want := []TopicLabel{TopicTechnology, TopicWork}
	if len(ext.Topics) != len(want) {
		t.Fatalf("topics: got %v, want %v", ext.Topics, want)
	}
	for i, label := range want {
		if ext.Topics[i] != label {
			t.Errorf("topic[%d]: got %q, want %q", i, ext.Topics[i], label)
		}
	}
}

func TestExtract_ShortCapturesDropped(t *testing.T) {
	// Single-character capture values are noise, not facts.
	ext := Extract("my name is J")
	if len(ext.Facts) != 0 {
		t.Errorf("expected single-letter capture to be dropped, got %+v", ext.Facts)
	}
}
