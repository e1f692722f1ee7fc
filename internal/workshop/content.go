// Package workshop holds the facilitator-side model of the two-day workshop:
// the fixed content tree, a navigator over it, a session timer and the
// preparation checklist.
package workshop

import (
	"regexp"
	"strconv"
)

// Module is one activity of a phase.
type Module struct {
	ID        string
	Title     string
	Duration  string
	Purpose   string
	Steps     []string
	Materials []string
	Tips      []string
}

// Minutes is the module duration in whole minutes.
func (m Module) Minutes() int {
	return ParseDuration(m.Duration)
}

// Phase groups modules under a name.
type Phase struct {
	Name    string
	Modules []Module
}

// Day is one workshop day.
type Day struct {
	Number   int
	Title    string
	Subtitle string
	Phases   []Phase
}

// Content is the immutable workshop tree. Callers must not modify what its accessors return.
type Content struct {
	days []Day
}

var firstNumber = regexp.MustCompile(`\d+`)

// ParseDuration reads the first integer of a duration such as "45 min". It returns 30 when there is none.
func ParseDuration(s string) int {
	if m := firstNumber.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	return 30
}

// Days returns every day in order.
func (c *Content) Days() []Day {
	return c.days
}

// Day returns day n (1-based).
func (c *Content) Day(n int) (Day, bool) {
	if n < 1 || n > len(c.days) {
		return Day{}, false
	}
	return c.days[n-1], true
}

// Module returns the module at a position.
func (c *Content) Module(p Position) (Module, bool) {
	d, ok := c.Day(p.Day)
	if !ok || p.Phase < 0 || p.Phase >= len(d.Phases) {
		return Module{}, false
	}
	ph := d.Phases[p.Phase]
	if p.Module < 0 || p.Module >= len(ph.Modules) {
		return Module{}, false
	}
	return ph.Modules[p.Module], true
}

// Find returns the position of the module with the given id.
func (c *Content) Find(moduleID string) (Position, bool) {
	for di, d := range c.days {
		for pi, ph := range d.Phases {
			for mi, m := range ph.Modules {
				if m.ID == moduleID {
					return Position{Day: di + 1, Phase: pi, Module: mi}, true
				}
			}
		}
	}
	return Position{}, false
}

// DefaultContent returns the Food Memories workshop programme.
func DefaultContent() *Content {
	return &Content{days: []Day{
		{
			Number:   1,
			Title:    "Day 1: Mapping and Writing",
			Subtitle: "Narrative Session",
			Phases: []Phase{
				{
					Name: "Memory Activation and Mapping",
					Modules: []Module{
						{
							ID:       "1-1",
							Title:    "My Madeleine: A Proustian Memory Activation",
							Duration: "30 min",
							Purpose:  "To activate autobiographical memory and create emotional safety through personal connection",
							Steps: []string{
								"Welcome participants and create a safe, comfortable environment",
								"Share your own food memory example as facilitator",
								"Invite participants to identify a food/dish that evokes a strong memory",
								"Encourage description of sensory, emotional, and cultural dimensions",
								"Optional: Show-and-tell with real foods, utensils, or images",
							},
							Materials: []string{"Real food items (optional)", "Images/photos", "Projector or printed visuals"},
							Tips:      []string{"Model vulnerability by sharing first", "Allow silence for reflection", "Encourage but don't pressure sharing"},
						},
						{
							ID:       "1-2",
							Title:    "Food Memory Map / Culinary Landscape",
							Duration: "45 min",
							Purpose:  "To facilitate access to food memories and identify what participants want to write about",
							Steps: []string{
								"Provide large paper sheets and creative materials",
								"Ask participants to list foodstuffs from their home/origin",
								"Encourage drawing connections between elements",
								"Prompt for sensory details: colors, aromas, shapes, textures",
								"Use vocabulary cards to support description",
								"Identify which aspects relate to Intangible Cultural Heritage",
								"Optional: Collaborative evaluation of maps",
							},
							Materials: []string{"Large paper sheets", "Colored pens/markers", "Vocabulary cards", "Collage materials (magazines, scissors, glue)"},
							Tips:      []string{"Encourage creativity and personal style", "Sharing is optional but encouraged", "Focus on relationships between elements"},
						},
					},
				},
				{
					Name: "Writing as Inquiry",
					Modules: []Module{
						{
							ID:       "1-3",
							Title:    "Sensory-Rich Reflective Writing: 'Taste of Home'",
							Duration: "45 min",
							Purpose:  "To develop detailed emotional and sensory narratives around a food memory",
							Steps: []string{
								"Participants select an aspect from their culinary map",
								"Encourage automatic writing (raw, unedited narratives)",
								"Provide guiding questions: Who prepared? When eaten? What emotions?",
								"Focus on sensory details: smells, textures, sounds, atmosphere",
								"Explore meaning: past vs. present significance",
								"If multi-day workshop: assign continued writing as homework",
							},
							Materials: []string{"Journals/notebooks", "Pens", "Printed prompts", "Quiet writing space"},
							Tips:      []string{"Emphasize no judgment, write freely", "Provide optional guiding questions", "Allow flexible pacing"},
						},
						{
							ID:       "1-4",
							Title:    "Everyday Eating",
							Duration: "30 min",
							Purpose:  "To highlight contrast between Heritage Food and contemporary habits; prepare for speculative exercise",
							Steps: []string{
								"Participants write contrasting micro-essay about a detail from previous writing",
								"Pair work: discussion and mutual critique (5-10 min)",
								"Solitary writing: focus on convenience, health, sustainability",
								"Share micro-essays with the group",
								"Facilitator establishes common themes across participants",
								"Identify shared elements (dish, ingredient, custom) for co-creation",
							},
							Materials: []string{"Writing materials", "Sharing circle setup"},
							Tips:      []string{"Highlight commonalities", "Prepare transition to future recipe", "Celebrate diverse perspectives"},
						},
					},
				},
				{
					Name: "Co-creation of the Future Recipe",
					Modules: []Module{
						{
							ID:       "1-5",
							Title:    "The Future Evolution of a Recipe",
							Duration: "60 min",
							Purpose:  "To reflect on culinary continuity and change; consider future challenges and adaptations",
							Steps: []string{
								"Identify common points in participants' maps and memories",
								"Choose a shared recipe or dish",
								"Visualize the dish (sketching or collage encouraged)",
								"Research ingredients, traditions, sustainability concerns",
								"Imagine future conditions: social/environmental changes",
								"Draft the future recipe with clear steps",
								"Connect each change to participants' stories",
								"This recipe becomes the focus of Day 2",
							},
							Materials: []string{"Large paper for collaborative work", "Markers", "Recipe template", "Research materials"},
							Tips:      []string{"Foster creative speculation", "Ground changes in real concerns", "Document the co-creation process"},
						},
					},
				},
			},
		},
		{
			Number:   2,
			Title:    "Day 2: Cooking, Sharing and Co-creation",
			Subtitle: "Cooking Session",
			Phases: []Phase{
				{
					Name: "Recap and Sharing Reflections",
					Modules: []Module{
						{
							ID:       "2-1",
							Title:    "Where Did We Start and Where Are We Going?",
							Duration: "30 min",
							Purpose:  "To reactivate emotional/sensory material from Day 1; bridge speculative work and embodied practice",
							Steps: []string{
								"Sit together informally as a group",
								"Share reflections on key memories from Day 1",
								"Discuss insights from writing and mapping exercises",
								"Express expectations for the cooking session",
								"Review the 'Future Recipe' created yesterday",
								"Discuss ingredients, steps, and story behind co-creation",
								"Clarify roles, tasks, and sequence for cooking",
							},
							Materials: []string{"Day 1 materials", "Future Recipe document", "Seating arrangement"},
							Tips:      []string{"Create comfortable atmosphere", "Ensure everyone's voice is heard", "Build excitement for cooking"},
						},
					},
				},
				{
					Name: "Collaborative Cooking and Guided Conversation",
					Modules: []Module{
						{
							ID:       "2-2",
							Title:    "Cooking as Heritage Practice",
							Duration: "45 min",
							Purpose:  "To understand cooking as cultural practice weaving habits, family learning, and collective identity",
							Steps: []string{
								"Begin collaborative cooking of the Future Recipe",
								"Facilitate conversation about everyday cooking relationships",
								"Prompts: Do you use recipes daily? How do you use them?",
								"Discuss: Do you write down new recipes?",
								"Explore: How do you interact with the kitchen?",
								"Observer takes detailed field notes",
								"Document embodied practices and gestures",
							},
							Materials: []string{"All cooking equipment", "Ingredients", "Recording devices", "Observer notebook"},
							Tips:      []string{"Let participants lead cooking", "Ask open-ended questions", "Observe tacit knowledge"},
						},
						{
							ID:       "2-3",
							Title:    "The Memory-Aroma Connection",
							Duration: "30 min",
							Purpose:  "To explore how senses function as memory repositories and tools for decision-making",
							Steps: []string{
								"Continue cooking while focusing on sensory dimensions",
								"Prompt participants to notice smells, textures, sounds",
								"Ask: What do these smells evoke for you?",
								"Discuss: Which sensory cues guide your cooking decisions?",
								"Explore: How do you know when something is 'done'?",
								"Help participants verbalize tacit sensory criteria",
								"Link sensory experiences to memories and emotions",
							},
							Materials: []string{"Ongoing cooking setup", "Recording equipment"},
							Tips:      []string{"Slow down to notice details", "Validate intuitive knowledge", "Connect senses to memory"},
						},
						{
							ID:       "2-4",
							Title:    "Dialogue on Intangible Culinary Heritage",
							Duration: "30 min",
							Purpose:  "To prompt critical reflection on personal and collective relationship with culinary heritage",
							Steps: []string{
								"Continue cooking while discussing heritage concepts",
								"Ask: What does culinary heritage mean to you?",
								"Explore: Do you feel connected to specific traditions?",
								"Discuss: Should heritage be preserved? How? By whom?",
								"Reflect: What's your role in preservation or transformation?",
								"Frame heritage as living practice, not fixed tradition",
								"Allow space for questioning and reinterpretation",
							},
							Materials: []string{"Cooking in progress", "Recording devices"},
							Tips:      []string{"Embrace complexity and ambivalence", "Avoid imposing single narrative", "Value diverse relationships to heritage"},
						},
						{
							ID:       "2-5",
							Title:    "Future and Culinary Innovation",
							Duration: "30 min",
							Purpose:  "To explore future imaginaries and position participants as agents of change",
							Steps: []string{
								"Continue cooking while looking forward",
								"Ask: How do you imagine culinary heritage evolving?",
								"Discuss: What hopes or concerns about future changes?",
								"Explore: What role will you play in transformation?",
								"Reflect: What legacy for future generations?",
								"Connect current cooking to future possibilities",
								"Document participant visions and expectations",
							},
							Materials: []string{"Cooking equipment", "Recording devices"},
							Tips:      []string{"Encourage imaginative thinking", "Balance optimism and realism", "Recognize agency"},
						},
					},
				},
				{
					Name: "Plating and Collective Tasting",
					Modules: []Module{
						{
							ID:       "2-6",
							Title:    "Tasting Memory in Evolution",
							Duration: "45 min",
							Purpose:  "To build bridges between past and future through collective reflection",
							Steps: []string{
								"Plate the prepared dish together",
								"Share the meal among all participants",
								"Discuss how dish relates to shared narrative",
								"Reflect on aspects of innovation, change, or future",
								"Compare expected vs. actual results",
								"Gather final reflections and evaluations",
								"Thank participants and close the workshop",
								"Optional: Collect materials and photographs",
							},
							Materials: []string{"Plates and serving items", "Camera", "Evaluation forms (optional)"},
							Tips:      []string{"Create celebratory atmosphere", "Honor the collective work", "Document final reflections"},
						},
					},
				},
			},
		},
	}}
}
