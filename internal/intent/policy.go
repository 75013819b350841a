package intent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy bundles the classifier wordlists and the controller's scripted
// replies. The out-of-domain list is deliberately the single source of truth
// for both classification and the post-completion leakage scan.
type Policy struct {
	Wordlists struct {
		Booking      []string `yaml:"booking"`
		Greeting     []string `yaml:"greeting"`
		Appreciation []string `yaml:"appreciation"`
		OutOfDomain  []string `yaml:"out_of_domain"`
	} `yaml:"wordlists"`
	Replies struct {
		Greetings       []string `yaml:"greetings"`
		Appreciation    string   `yaml:"appreciation"`
		ScopeRefusal    string   `yaml:"scope_refusal"`
		Fallback        string   `yaml:"fallback"`
		AskName         string   `yaml:"ask_name"`
		AskDateTime     string   `yaml:"ask_datetime"`
		AskPurpose      string   `yaml:"ask_purpose"`
		BookingComplete string   `yaml:"booking_complete"`
	} `yaml:"replies"`
	Prompt struct {
		System string `yaml:"system"`
	} `yaml:"prompt"`
}

// DefaultPolicy returns the built-in wordlists and reply templates.
func DefaultPolicy() Policy {
	var p Policy
	p.Wordlists.Booking = []string{"book", "appointment", "meeting", "schedule", "call"}
	p.Wordlists.Greeting = []string{"hi", "hello", "hey", "assalam", "good morning", "good evening"}
	p.Wordlists.Appreciation = []string{"thank", "thanks", "great", "awesome", "nice", "good job"}
	p.Wordlists.OutOfDomain = []string{"who is", "what is", "define", "history", "elon musk", "president", "capital"}

	p.Replies.Greetings = []string{
		"Hello! How can I assist you regarding IGCSE, A Levels, or appointments?",
		"Hi there! Ask me about IGCSE, A Levels, or book an appointment.",
	}
	p.Replies.Appreciation = "Thank you! I'm always here to help."
	p.Replies.ScopeRefusal = "I'm sorry, I'm a business-specific assistant.\n\n" +
		"I can help with:\n" +
		"- IGCSE / A Levels information\n" +
		"- Booking appointments\n" +
		"- Aspire System services"
	p.Replies.Fallback = "I couldn't process that right now. Please try again."
	p.Replies.AskName = "Sure! What is your full name?"
	p.Replies.AskDateTime = "Please tell me your preferred date & time for the appointment."
	p.Replies.AskPurpose = "What is the purpose of this appointment?"
	p.Replies.BookingComplete = "Your appointment has been booked successfully!\n\n" +
		"Name: %s\nDate/Time: %s\nPurpose: %s\n\nWe will contact you soon."

	p.Prompt.System = "You are Chat with Bilal, a STRICT business assistant for Aspire System. " +
		"Answer ONLY using provided knowledge. " +
		"DO NOT answer general knowledge questions."
	return p
}

// LoadPolicy reads a YAML policy file and fills any omitted section from the
// defaults, so a file may override just the wordlists or just one reply.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	var override Policy
	if err := yaml.Unmarshal(b, &override); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}
	mergeLists(&p.Wordlists.Booking, override.Wordlists.Booking)
	mergeLists(&p.Wordlists.Greeting, override.Wordlists.Greeting)
	mergeLists(&p.Wordlists.Appreciation, override.Wordlists.Appreciation)
	mergeLists(&p.Wordlists.OutOfDomain, override.Wordlists.OutOfDomain)
	mergeLists(&p.Replies.Greetings, override.Replies.Greetings)
	mergeString(&p.Replies.Appreciation, override.Replies.Appreciation)
	mergeString(&p.Replies.ScopeRefusal, override.Replies.ScopeRefusal)
	mergeString(&p.Replies.Fallback, override.Replies.Fallback)
	mergeString(&p.Replies.AskName, override.Replies.AskName)
	mergeString(&p.Replies.AskDateTime, override.Replies.AskDateTime)
	mergeString(&p.Replies.AskPurpose, override.Replies.AskPurpose)
	mergeString(&p.Replies.BookingComplete, override.Replies.BookingComplete)
	mergeString(&p.Prompt.System, override.Prompt.System)
	return p, nil
}

func mergeLists(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
