package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultPolicy())

	tests := []struct {
		name string
		text string
		want Kind
	}{
		{"booking trigger", "I want to book an appointment", KindBookingRequest},
		{"booking via schedule", "can we schedule something", KindBookingRequest},
		{"booking via call", "please give me a call tomorrow", KindBookingRequest},
		{"greeting", "hello", KindGreeting},
		{"greeting mixed case", "HeLLo there", KindGreeting},
		{"greeting phrase", "good morning to you", KindGreeting},
		{"appreciation", "thanks a lot", KindAppreciation},
		{"appreciation phrase", "good job", KindAppreciation},
		{"out of domain who is", "who is the president", KindOutOfDomain},
		{"out of domain capital", "capital of France?", KindOutOfDomain},
		{"out of domain name", "tell me about elon musk", KindOutOfDomain},
		{"business query", "how much does the IGCSE course cost", KindBusinessQuery},
		{"empty text", "", KindBusinessQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	c := NewClassifier(DefaultPolicy())

	// Booking triggers win over any co-occurring category.
	assert.Equal(t, KindBookingRequest, c.Classify("hello, I want to book a meeting, thanks"))
	assert.Equal(t, KindBookingRequest, c.Classify("thanks, can you schedule a call"))
	// Greetings win over appreciation and out-of-domain markers.
	assert.Equal(t, KindGreeting, c.Classify("hi, thanks for everything"))
	assert.Equal(t, KindGreeting, c.Classify("hello, who is in charge here"))
	// Appreciation wins over out-of-domain markers.
	assert.Equal(t, KindAppreciation, c.Classify("thanks, what is that"))
}

func TestClassifyWholeWordOnly(t *testing.T) {
	c := NewClassifier(DefaultPolicy())

	// Substrings inside larger words must not match.
	assert.Equal(t, KindBusinessQuery, c.Classify("your bookkeeping services"))
	assert.Equal(t, KindBusinessQuery, c.Classify("the highest course fees"))
	assert.Equal(t, KindBusinessQuery, c.Classify("recalling my enrollment"))
}

func TestContainsOutOfDomain(t *testing.T) {
	c := NewClassifier(DefaultPolicy())

	assert.True(t, c.ContainsOutOfDomain("The capital of France is Paris."))
	assert.True(t, c.ContainsOutOfDomain("Elon Musk founded several companies."))
	assert.False(t, c.ContainsOutOfDomain("Our IGCSE program runs twice a year."))
}
