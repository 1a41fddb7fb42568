package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
	"gopkg.in/yaml.v3"

	"reviews-etl/models"
	"reviews-etl/utils"
)

// negators flip the polarity of the next scored word.
var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "neither": {}, "nor": {},
	"don't": {}, "doesn't": {}, "didn't": {}, "isn't": {}, "wasn't": {},
	"won't": {}, "can't": {}, "couldn't": {}, "wouldn't": {}, "shouldn't": {},
}

// defaultLexicon is the built-in polarity lexicon. Weights are in
// [-1.0, 1.0]; unlisted words are neutral.
var defaultLexicon = map[string]float64{
	"amazing": 0.9, "awesome": 0.9, "excellent": 0.9, "outstanding": 0.9,
	"perfect": 1.0, "fantastic": 0.9, "wonderful": 0.8, "superb": 0.8,
	"brilliant": 0.8, "love": 0.7, "loved": 0.7, "great": 0.7,
	"best": 0.8, "good": 0.5, "nice": 0.4, "solid": 0.4,
	"happy": 0.5, "pleased": 0.5, "satisfied": 0.5, "recommend": 0.6,
	"recommended": 0.6, "fast": 0.3, "comfortable": 0.4, "beautiful": 0.6,
	"quality": 0.3, "reliable": 0.5, "durable": 0.4, "worth": 0.4,
	"easy": 0.3, "smooth": 0.3, "impressed": 0.6, "fine": 0.2,
	"okay": 0.1, "ok": 0.1, "decent": 0.2, "works": 0.2,

	"awful": -0.9, "terrible": -0.9, "horrible": -0.9, "worst": -1.0,
	"useless": -0.8, "garbage": -0.8, "junk": -0.7, "broken": -0.7,
	"broke": -0.6, "defective": -0.8, "hate": -0.7, "hated": -0.7,
	"bad": -0.5, "poor": -0.5, "disappointing": -0.6, "disappointed": -0.6,
	"waste": -0.6, "cheap": -0.3, "flimsy": -0.5, "slow": -0.3,
	"uncomfortable": -0.4, "ugly": -0.5, "overpriced": -0.5, "refund": -0.4,
	"return": -0.2, "returned": -0.3, "faulty": -0.7, "misleading": -0.6,
	"scam": -0.9, "damaged": -0.6, "unusable": -0.8, "regret": -0.6,
}

// lexiconFile is the YAML shape of an external lexicon.
type lexiconFile struct {
	Words map[string]float64 `yaml:"words"`
}

// Scorer maps review text to a polarity score in [-1.0, 1.0]. The model is
// an interchangeable black box behind Score; this implementation averages
// lexicon word polarities with single-step negation. Scoring is
// deterministic for a given lexicon, which the rolling averages rely on.
type Scorer struct {
	logger  *utils.Logger
	lexicon map[string]float64
}

// NewScorer creates a Scorer using the built-in lexicon.
func NewScorer(logger *utils.Logger) *Scorer {
	return &Scorer{logger: logger, lexicon: defaultLexicon}
}

// LoadLexicon replaces the lexicon with one read from a YAML file of the
// form `words: {word: weight}`. Weights must be in [-1.0, 1.0].
func (s *Scorer) LoadLexicon(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read lexicon file: %w", err)
	}

	var lf lexiconFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return fmt.Errorf("parse lexicon YAML: %w", err)
	}
	if len(lf.Words) == 0 {
		return fmt.Errorf("lexicon %s contains no words", path)
	}
	for w, weight := range lf.Words {
		if weight < -1.0 || weight > 1.0 {
			return fmt.Errorf("lexicon weight for %q out of range [-1,1]: %v", w, weight)
		}
	}

	s.lexicon = lf.Words
	s.logger.Info("[sentiment] Loaded lexicon with %d words from %s", len(lf.Words), path)
	return nil
}

// Score returns the polarity of text. Empty input scores exactly 0.0, as
// does text with no lexicon matches. Never errors.
func (s *Scorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0.0
	}

	var (
		sum     float64
		matched int
		negate  bool
	)

	tokens := words.FromString(strings.ToLower(text))
	for tokens.Next() {
		tok := strings.TrimSpace(tokens.Value())
		if tok == "" {
			continue
		}

		if _, ok := negators[tok]; ok {
			negate = true
			continue
		}

		weight, ok := s.lexicon[tok]
		if !ok {
			// Negation only carries to the next scored word.
			continue
		}
		if negate {
			weight = -weight
			negate = false
		}
		sum += weight
		matched++
	}

	if matched == 0 {
		return 0.0
	}
	return clamp(sum/float64(matched), -1.0, 1.0)
}

// ScoreAll attaches a sentiment score to every clean review, derived solely
// from its review text.
func (s *Scorer) ScoreAll(reviews []*models.CleanReview) {
	var sum, min, max float64
	for i, r := range reviews {
		score := s.Score(r.ReviewText)
		r.SentimentScore = score
		sum += score
		if i == 0 || score < min {
			min = score
		}
		if i == 0 || score > max {
			max = score
		}
	}
	if len(reviews) > 0 {
		s.logger.Info("[sentiment] Scored %d reviews: mean=%.4f min=%.4f max=%.4f",
			len(reviews), sum/float64(len(reviews)), min, max)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
