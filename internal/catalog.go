package internal

import (
	"fmt"
	"strings"
)

// Personality is a named system-prompt preset
type Personality struct {
	Key         string `json:"key" yaml:"key"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Instruction string `json:"instruction" yaml:"instruction"`
}

// ModelPricing holds USD rates per 1K tokens for one model
type ModelPricing struct {
	ModelID             string  `json:"id" yaml:"id"`
	PromptRatePer1K     float64 `json:"prompt_rate" yaml:"prompt_rate"`
	CompletionRatePer1K float64 `json:"completion_rate" yaml:"completion_rate"`
}

// DefaultSystemText is prepended to every request before the personality style
const DefaultSystemText = "You are PersonaChat, a conversational assistant. Answer concisely and clearly."

// BuiltinPersonalities is the shipped personality catalog; the first entry is the default.
var BuiltinPersonalities = []Personality{
	{
		Key:         "zen-master",
		DisplayName: "🧘 Zen Master",
		Instruction: "Speak calmly, slowly and vividly. Use metaphors from nature: rivers, clouds, forests. " +
			"Offer simple breathing exercises and short koan-like sentences. " +
			"Avoid long lectures; every sentence should sound like wisdom from a zen monastery.",
	},
	{
		Key:         "standup-comic",
		DisplayName: "🎭 Crazy Stand-up Comic",
		Instruction: "Be witty and funny. Situational jokes, wordplay, a bit of absurdity. " +
			"Every answer is a mini-show: a light roast, a comeback, humor, but still helpful.",
	},
	{
		Key:         "business-pro",
		DisplayName: "💼 Business Pro",
		Instruction: "Talk like a business consultant. Brief, concrete, in bullet points. " +
			"Focus on KPIs, risks, options and next steps. Professional and confident tone.",
	},
	{
		Key:         "gangster-30s",
		DisplayName: "🎩 1930s Gangster",
		Instruction: "Noir, retro mood. Slang like 'listen here, kid', 'deal of a lifetime', 'straight off the docks'. " +
			"Sound like a gangster film typed on an old typewriter. No violence and no profanity.",
	},
	{
		Key:         "skeptical-frog",
		DisplayName: "🐸 Skeptical Frog",
		Instruction: "A snarky, skeptical, ironic amphibian. Ask tricky questions, " +
			"point out holes in the logic, give counterexamples. Bitingly funny, never aggressive.",
	},
	{
		Key:         "socrates",
		DisplayName: "🧔 Socrates",
		Instruction: "Maieutic method. Answer mostly with guiding questions. " +
			"Lead the user to their own conclusion, calmly and reflectively.",
	},
	{
		Key:         "kid-mode",
		DisplayName: "🧒 Kid Mode",
		Instruction: "Very simple and vivid, with examples from fairy tales and everyday life. " +
			"Short sentences, a warm tone, lots of encouragement and empathy.",
	},
	{
		Key:         "mental-coach",
		DisplayName: "🧠 Mental Coach",
		Instruction: "Motivate concretely. Psychological tools, tasks and mini-goals. " +
			"Highlight strengths, point to areas for improvement, give an action plan.",
	},
}

// BuiltinPricing is the shipped pricing table; the first entry is the default.
var BuiltinPricing = []ModelPricing{
	{ModelID: "gpt-4o-mini", PromptRatePer1K: 0.150, CompletionRatePer1K: 0.600},
	{ModelID: "gpt-4o", PromptRatePer1K: 5.000, CompletionRatePer1K: 15.000},
}

// PersonalityCatalog is an immutable, ordered personality lookup
type PersonalityCatalog struct {
	entries []Personality
	index   map[string]int
}

// NewPersonalityCatalog builds a catalog, rejecting empty and duplicate keys
func NewPersonalityCatalog(entries []Personality) (*PersonalityCatalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("personality catalog must not be empty")
	}
	c := &PersonalityCatalog{
		entries: make([]Personality, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, p := range entries {
		key := strings.TrimSpace(p.Key)
		if key == "" {
			return nil, fmt.Errorf("personality %q has an empty key", p.DisplayName)
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate personality key: %s", key)
		}
		p.Key = key
		if p.DisplayName == "" {
			p.DisplayName = key
		}
		c.index[key] = len(c.entries)
		c.entries = append(c.entries, p)
	}
	return c, nil
}

// Get returns the personality for key
func (c *PersonalityCatalog) Get(key string) (Personality, bool) {
	i, ok := c.index[key]
	if !ok {
		return Personality{}, false
	}
	return c.entries[i], true
}

// Lookup is Get with an ErrNotFound error for unknown keys
func (c *PersonalityCatalog) Lookup(key string) (Personality, error) {
	p, ok := c.Get(key)
	if !ok {
		return Personality{}, fmt.Errorf("personality %q: %w", key, ErrNotFound)
	}
	return p, nil
}

// Default returns the first catalog entry
func (c *PersonalityCatalog) Default() Personality {
	return c.entries[0]
}

// Keys returns the keys in catalog order
func (c *PersonalityCatalog) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, p := range c.entries {
		keys[i] = p.Key
	}
	return keys
}

// All returns a copy of the entries in catalog order
func (c *PersonalityCatalog) All() []Personality {
	return append([]Personality(nil), c.entries...)
}

func (c *PersonalityCatalog) Len() int { return len(c.entries) }

// PricingTable is an immutable, ordered model pricing lookup
type PricingTable struct {
	entries []ModelPricing
	index   map[string]int
}

// NewPricingTable builds a pricing table, rejecting empty/duplicate IDs and negative rates
func NewPricingTable(entries []ModelPricing) (*PricingTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("pricing table must not be empty")
	}
	t := &PricingTable{
		entries: make([]ModelPricing, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, m := range entries {
		id := strings.TrimSpace(m.ModelID)
		if id == "" {
			return nil, fmt.Errorf("model pricing entry has an empty id")
		}
		if _, dup := t.index[id]; dup {
			return nil, fmt.Errorf("duplicate model id: %s", id)
		}
		if m.PromptRatePer1K < 0 || m.CompletionRatePer1K < 0 {
			return nil, fmt.Errorf("model %s has a negative rate", id)
		}
		m.ModelID = id
		t.index[id] = len(t.entries)
		t.entries = append(t.entries, m)
	}
	return t, nil
}

// Get returns the pricing for a model id
func (t *PricingTable) Get(id string) (ModelPricing, bool) {
	i, ok := t.index[id]
	if !ok {
		return ModelPricing{}, false
	}
	return t.entries[i], true
}

// Lookup is Get with an ErrNotFound error for unknown ids
func (t *PricingTable) Lookup(id string) (ModelPricing, error) {
	m, ok := t.Get(id)
	if !ok {
		return ModelPricing{}, fmt.Errorf("model %q: %w", id, ErrNotFound)
	}
	return m, nil
}

// Default returns the first table entry
func (t *PricingTable) Default() ModelPricing {
	return t.entries[0]
}

// Keys returns the model ids in table order
func (t *PricingTable) Keys() []string {
	keys := make([]string, len(t.entries))
	for i, m := range t.entries {
		keys[i] = m.ModelID
	}
	return keys
}

// All returns a copy of the entries in table order
func (t *PricingTable) All() []ModelPricing {
	return append([]ModelPricing(nil), t.entries...)
}

func (t *PricingTable) Len() int { return len(t.entries) }

// MergePersonalities overlays extra entries on base: matching keys are replaced
// in place, new keys are appended.
func MergePersonalities(base, extra []Personality) []Personality {
	out := append([]Personality(nil), base...)
	pos := make(map[string]int, len(out))
	for i, p := range out {
		pos[p.Key] = i
	}
	for _, p := range extra {
		if i, ok := pos[p.Key]; ok {
			out[i] = p
			continue
		}
		pos[p.Key] = len(out)
		out = append(out, p)
	}
	return out
}

// MergePricing overlays extra entries on base with the same rules as MergePersonalities
func MergePricing(base, extra []ModelPricing) []ModelPricing {
	out := append([]ModelPricing(nil), base...)
	pos := make(map[string]int, len(out))
	for i, m := range out {
		pos[m.ModelID] = i
	}
	for _, m := range extra {
		if i, ok := pos[m.ModelID]; ok {
			out[i] = m
			continue
		}
		pos[m.ModelID] = len(out)
		out = append(out, m)
	}
	return out
}

// ComposeSystemPrompt builds the request-scoped system message for a personality
func ComposeSystemPrompt(systemText string, p Personality) string {
	return systemText + "\n\n" + "Style: " + p.DisplayName + " — " + p.Instruction
}
