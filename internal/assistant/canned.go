package assistant

import "strings"

// cannedReply is one keyword-triggered answer. A reply matches when the
// lower-cased prompt contains any of its keywords; the first match wins.
type cannedReply struct {
	keywords []string
	text     string
}

var cannedReplies = []cannedReply{
	{
		keywords: []string{"color", "style"},
		text: "I can help you customize colors and styles! Select any element on the canvas, " +
			"then use the **Properties** panel on the right to adjust colors, fonts, spacing, and more. " +
			"You can also ask me specific questions like *make the button blue* or *change the text to be larger*.",
	},
	{
		keywords: []string{"database", "backend"},
		text: "For backend and database setup, click the **Database** button in the header. " +
			"I can help you create tables, define relationships, and generate API endpoints. " +
			"You can also describe what data you need to store and I'll suggest a schema structure.",
	},
	{
		keywords: []string{"deploy", "publish"},
		text: "When you're ready to deploy, click the **Deploy** button in the header. " +
			"I'll generate all the necessary code and publish it as a static site. " +
			"Make sure to test your design first using the **Preview** button.",
	},
	{
		keywords: []string{"component", "add"},
		text: "You can add components by dragging them from the left sidebar onto the canvas. " +
			"Available components include buttons, text, inputs, containers, cards, and images. " +
			"After adding a component, click on it to customize its properties.",
	},
}

const defaultReply = `I'm here to help you build your website! I can assist with:

- Styling and customizing components
- Setting up your database structure
- Generating and explaining code
- Deployment guidance
- General design advice

What would you like to work on?`

// Canned answers a prompt from the built-in keyword table.
func Canned(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, r := range cannedReplies {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.text
			}
		}
	}
	return defaultReply
}

// Suggestions returns the starter prompts shown in an empty chat.
func Suggestions() []string {
	return []string{
		"How do I change the button color?",
		"Create a user registration form",
		"Set up a database for my blog",
		"Generate an API for user authentication",
	}
}
