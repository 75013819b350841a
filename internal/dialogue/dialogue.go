package dialogue

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"bilal-chat-backend/internal/intent"
	"bilal-chat-backend/internal/llm"
)

// State is the dialogue position of a session. Idle handles classified
// intents; the three Awaiting states form the linear booking sub-flow.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingName     State = "awaiting_name"
	StateAwaitingDateTime State = "awaiting_datetime"
	StateAwaitingPurpose  State = "awaiting_purpose"
)

// Booking is a completed appointment request. It is only ever constructed by
// the draft once all three fields are present.
type Booking struct {
	Name     string
	DateTime string
	Purpose  string
}

// draft accumulates booking answers field by field.
type draft struct {
	name     string
	dateTime string
	purpose  string
}

func (d *draft) complete() (Booking, bool) {
	if d.name == "" || d.dateTime == "" || d.purpose == "" {
		return Booking{}, false
	}
	return Booking{Name: d.name, DateTime: d.dateTime, Purpose: d.purpose}, true
}

// Session is the per-conversation context passed to the controller. One turn
// is handled to completion before the next, so Session needs no lock of its
// own.
type Session struct {
	State  State
	draft  draft
	recent []string
	window int
}

func NewSession(historyWindow int) *Session {
	if historyWindow <= 0 {
		historyWindow = 5
	}
	return &Session{State: StateIdle, window: historyWindow}
}

// Recent returns the rolling window of prior user utterances.
func (s *Session) Recent() []string {
	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}

func (s *Session) remember(text string) {
	s.recent = append(s.recent, text)
	if len(s.recent) > s.window {
		s.recent = s.recent[len(s.recent)-s.window:]
	}
}

// KnowledgeSource supplies the current knowledge blob for business queries.
type KnowledgeSource interface {
	Get() string
}

// AppointmentSink receives completed bookings.
type AppointmentSink interface {
	Append(b Booking) error
}

// Turn is the outcome of one handled user message.
type Turn struct {
	Reply  string
	Intent intent.Kind
	State  State
	Booked *Booking
}

// Controller drives the per-turn dialogue: classify when idle, consume
// answers while booking, forward business queries to the completion service.
type Controller struct {
	classifier   *intent.Classifier
	policy       intent.Policy
	client       llm.Client
	knowledge    KnowledgeSource
	appointments AppointmentSink
	maxTokens    int
	temperature  float32
}

func NewController(p intent.Policy, client llm.Client, knowledge KnowledgeSource, appointments AppointmentSink, maxTokens int, temperature float32) *Controller {
	return &Controller{
		classifier:   intent.NewClassifier(p),
		policy:       p,
		client:       client,
		knowledge:    knowledge,
		appointments: appointments,
		maxTokens:    maxTokens,
		temperature:  temperature,
	}
}

// HandleTurn processes one user message and advances the session. Once the
// session has entered the booking sub-flow, classification is bypassed: every
// input is consumed verbatim as the answer to the pending question.
func (c *Controller) HandleTurn(ctx context.Context, sess *Session, text string) Turn {
	switch sess.State {
	case StateAwaitingName:
		sess.draft.name = text
		sess.State = StateAwaitingDateTime
		return Turn{Reply: c.policy.Replies.AskDateTime, State: sess.State}
	case StateAwaitingDateTime:
		sess.draft.dateTime = text
		sess.State = StateAwaitingPurpose
		return Turn{Reply: c.policy.Replies.AskPurpose, State: sess.State}
	case StateAwaitingPurpose:
		sess.draft.purpose = text
		return c.finishBooking(sess)
	}

	kind := c.classifier.Classify(text)
	switch kind {
	case intent.KindBookingRequest:
		sess.State = StateAwaitingName
		return Turn{Reply: c.policy.Replies.AskName, Intent: kind, State: sess.State}
	case intent.KindGreeting:
		sess.remember(text)
		return Turn{Reply: c.greeting(), Intent: kind, State: sess.State}
	case intent.KindAppreciation:
		sess.remember(text)
		return Turn{Reply: c.policy.Replies.Appreciation, Intent: kind, State: sess.State}
	case intent.KindOutOfDomain:
		sess.remember(text)
		return Turn{Reply: c.policy.Replies.ScopeRefusal, Intent: kind, State: sess.State}
	default:
		reply := c.answerBusinessQuery(ctx, sess, text)
		sess.remember(text)
		return Turn{Reply: reply, Intent: intent.KindBusinessQuery, State: sess.State}
	}
}

// finishBooking emits the confirmation and returns the machine to idle. The
// draft is only appended when all three fields are present; it always is at
// this point since each field store advances the state exactly one step.
func (c *Controller) finishBooking(sess *Session) Turn {
	booking, ok := sess.draft.complete()
	sess.draft = draft{}
	sess.State = StateIdle
	if !ok {
		log.Printf("[dialogue] discarding incomplete booking draft")
		return Turn{Reply: c.policy.Replies.Fallback, State: sess.State}
	}
	if err := c.appointments.Append(booking); err != nil {
		log.Printf("[dialogue] failed to record appointment: %v", err)
	}
	reply := fmt.Sprintf(c.policy.Replies.BookingComplete, booking.Name, booking.DateTime, booking.Purpose)
	return Turn{Reply: reply, State: sess.State, Booked: &booking}
}

// answerBusinessQuery forwards the question to the completion service. Any
// downstream failure is swallowed into the fixed fallback reply, and replies
// that leak out-of-domain trigger words are replaced with the scope refusal.
func (c *Controller) answerBusinessQuery(ctx context.Context, sess *Session, question string) string {
	res := c.client.Complete(ctx, llm.Request{
		System:      c.policy.Prompt.System,
		Knowledge:   c.knowledge.Get(),
		Recent:      sess.Recent(),
		Question:    question,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if !res.OK() {
		log.Printf("[dialogue] completion failed (%s): %v", res.Err, res.Cause)
		return c.policy.Replies.Fallback
	}
	if c.classifier.ContainsOutOfDomain(res.Reply) {
		log.Printf("[dialogue] completion reply leaked out-of-domain terms, substituting refusal")
		return c.policy.Replies.ScopeRefusal
	}
	return res.Reply
}

func (c *Controller) greeting() string {
	greetings := c.policy.Replies.Greetings
	if len(greetings) == 0 {
		return c.policy.Replies.Fallback
	}
	return greetings[rand.Intn(len(greetings))]
}
