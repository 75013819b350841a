package intent

import (
	"regexp"
	"strings"
)

type Kind string

const (
	KindBookingRequest Kind = "booking_request"
	KindGreeting       Kind = "greeting"
	KindAppreciation   Kind = "appreciation"
	KindOutOfDomain    Kind = "out_of_domain"
	KindBusinessQuery  Kind = "business_query"
)

// Classifier maps a single user utterance to a Kind using whole-word,
// case-insensitive matching. Precedence is fixed: booking triggers win over
// greetings, greetings over appreciation, appreciation over out-of-domain
// markers; anything unmatched is a business query.
type Classifier struct {
	booking      *regexp.Regexp
	greeting     *regexp.Regexp
	appreciation *regexp.Regexp
	outOfDomain  *regexp.Regexp
}

func NewClassifier(p Policy) *Classifier {
	return &Classifier{
		booking:      compileWordlist(p.Wordlists.Booking),
		greeting:     compileWordlist(p.Wordlists.Greeting),
		appreciation: compileWordlist(p.Wordlists.Appreciation),
		outOfDomain:  compileWordlist(p.Wordlists.OutOfDomain),
	}
}

func (c *Classifier) Classify(text string) Kind {
	t := strings.TrimSpace(text)
	switch {
	case matches(c.booking, t):
		return KindBookingRequest
	case matches(c.greeting, t):
		return KindGreeting
	case matches(c.appreciation, t):
		return KindAppreciation
	case matches(c.outOfDomain, t):
		return KindOutOfDomain
	default:
		return KindBusinessQuery
	}
}

// ContainsOutOfDomain reports whether text carries an out-of-domain trigger
// word. Used post-hoc on completion replies to catch scope leakage.
func (c *Classifier) ContainsOutOfDomain(text string) bool {
	return matches(c.outOfDomain, text)
}

func matches(re *regexp.Regexp, text string) bool {
	return re != nil && re.MatchString(text)
}

func compileWordlist(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
