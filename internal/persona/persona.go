// Package persona holds the static topic personas and their system prompts.
package persona

// Persona pairs a route key with the system prompt sent on every
// completion call for that topic. The set is fixed at compile time; the
// endpoint a request hits determines which persona applies.
type Persona struct {
	Key          string
	SystemPrompt string
}

// TitleSystemPrompt instructs the model to produce a short chat title.
const TitleSystemPrompt = "Generate a short, clean chat title (max 5 words) summarizing the user's message. Return only the title."

var personas = []Persona{
	{
		Key: "real-estate",
		SystemPrompt: "You are a professional and friendly real estate assistant. " +
			"Provide clear, structured answers using short headings, bullet points, and short paragraphs. " +
			"Keep tone helpful and respectful. Avoid markdown symbols like ** or ###.",
	},
	{
		Key: "student-mentor",
		SystemPrompt: "You are a friendly and knowledgeable student mentor. " +
			"Help with studies, exams, career guidance and productivity. " +
			"Use bullet points and short paragraphs. Keep a warm, motivating tone.",
	},
	{
		Key: "fitness-coach",
		SystemPrompt: "You are a certified fitness coach and nutrition expert. " +
			"Give workout plans, diet advice, and practical tips. " +
			"Format answers with steps and bullet points.",
	},
	{
		Key: "restaurant",
		SystemPrompt: "You are a friendly restaurant and culinary assistant. " +
			"Help with recipes, menu ideas, cooking instructions, and operations. " +
			"Format with clear short sections and bullet points.",
	},
	{
		Key: "travel-planner",
		SystemPrompt: "You are a helpful travel planner assistant. " +
			"Suggest itineraries, budgets, places to visit and packing tips. " +
			"Structure answers with headings, bullet points and short paragraphs.",
	},
}

var byKey = func() map[string]Persona {
	m := make(map[string]Persona, len(personas))
	for _, p := range personas {
		m[p.Key] = p
	}
	return m
}()

// All returns every persona in registration order.
func All() []Persona {
	out := make([]Persona, len(personas))
	copy(out, personas)
	return out
}

// Lookup returns the persona for a route key.
func Lookup(key string) (Persona, bool) {
	p, ok := byKey[key]
	return p, ok
}
