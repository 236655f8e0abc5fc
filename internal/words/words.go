// Package words produces the reference text participants type against.
package words

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mystic-06/quik-type/internal/constants"
	"github.com/mystic-06/quik-type/internal/db"
)

// Source generates test texts. It prefers the Mongo sentence corpus and
// falls back to random common words when the corpus is unreachable.
type Source struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSource() *Source {
	return &Source{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// TestText returns one fresh reference text.
func (s *Source) TestText() string {
	if db.Connected() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		sentence, err := db.GetRandomSentence(ctx)
		if err == nil && sentence.Story != "" {
			return sentence.Story
		}
		log.Printf("Error fetching random sentence, using generated words: %v", err)
	}
	return s.randomWords(constants.WordsPerTest)
}

func (s *Source) randomWords(count int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	picked := make([]string, count)
	for i := range picked {
		picked[i] = commonWords[s.rnd.Intn(len(commonWords))]
	}
	return strings.Join(picked, " ")
}

// commonWords is the fallback vocabulary, small English words that type well.
var commonWords = []string{
	"the", "be", "of", "and", "a", "to", "in", "he", "have", "it",
	"that", "for", "they", "with", "as", "not", "on", "she", "at", "by",
	"this", "we", "you", "do", "but", "from", "or", "which", "one", "would",
	"all", "will", "there", "say", "who", "make", "when", "can", "more", "if",
	"no", "man", "out", "other", "so", "what", "time", "up", "go", "about",
	"than", "into", "could", "state", "only", "new", "year", "some", "take", "come",
	"these", "know", "see", "use", "get", "like", "then", "first", "any", "work",
	"now", "may", "such", "give", "over", "think", "most", "even", "find", "day",
	"also", "after", "way", "many", "must", "look", "before", "great", "back", "through",
	"long", "where", "much", "should", "well", "people", "down", "own", "just", "because",
	"good", "each", "those", "feel", "seem", "how", "high", "too", "place", "little",
	"world", "very", "still", "nation", "hand", "old", "life", "tell", "write", "become",
	"here", "show", "house", "both", "between", "need", "mean", "call", "develop", "under",
	"last", "right", "move", "thing", "general", "school", "never", "same", "another", "begin",
	"while", "number", "part", "turn", "real", "leave", "might", "want", "point", "form",
	"off", "child", "few", "small", "since", "against", "ask", "late", "home", "interest",
	"large", "person", "end", "open", "public", "follow", "during", "present", "without", "again",
	"hold", "govern", "around", "possible", "head", "consider", "word", "program", "problem", "however",
	"lead", "system", "set", "order", "eye", "plan", "run", "keep", "face", "fact",
	"group", "play", "stand", "increase", "early", "course", "change", "help", "line", "city",
}
