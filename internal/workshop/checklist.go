package workshop

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ChecklistKey names the persisted checklist.
const ChecklistKey = "food-memories-checklist"

type ChecklistItem struct {
	ID    string
	Label string
}

type ChecklistSection struct {
	ID    string
	Title string
	Items []ChecklistItem
}

var checklistSections = []ChecklistSection{
	{
		ID:    "before-workshop",
		Title: "Before the Workshop",
		Items: []ChecklistItem{
			{"before-purpose", "Engage with participants about purpose and expectations"},
			{"before-agreement", `Create "Community Agreement" ground rules`},
			{"before-space", "Prepare comfortable and welcoming space"},
			{"before-consent", "Precirculate consent forms"},
			{"before-needs", "Gather participant needs via pre-workshop forms"},
		},
	},
	{
		ID:    "day1-materials",
		Title: "Day 1 Materials",
		Items: []ChecklistItem{
			{"day1-paper", "Large paper sheets for mapping"},
			{"day1-art", "Colored pens, markers, art supplies"},
			{"day1-journals", "Journals or notebooks"},
			{"day1-prompts", "Printed prompts and vocabulary cards"},
		},
	},
	{
		ID:    "day2-setup",
		Title: "Day 2 Kitchen Setup",
		Items: []ChecklistItem{
			{"day2-ingredients", "All ingredients for Future Recipe"},
			{"day2-equipment", "Kitchen equipment and utensils"},
			{"day2-safety", "Safety equipment (first aid, aprons, gloves)"},
			{"day2-recording", "Recording devices (camera, audio, video)"},
			{"day2-documentation", "Documentation materials for observer"},
		},
	},
}

// ChecklistSections returns the fixed preparation checklist.
func ChecklistSections() []ChecklistSection {
	return checklistSections
}

// KeyValueStore persists small documents by key.
type KeyValueStore interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// FileStore keeps each key as <Dir>/<key>.json. A missing file loads as nil.
type FileStore struct {
	Dir string
}

func (s FileStore) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s FileStore) Load(key string) ([]byte, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

func (s FileStore) Save(key string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, "."+key+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

// Checklist tracks which preparation items are done and saves after every change.
type Checklist struct {
	mu    sync.Mutex
	store KeyValueStore
	done  map[string]bool
}

func defaultChecklistState() map[string]bool {
	m := map[string]bool{}
	for _, s := range checklistSections {
		for _, it := range s.Items {
			m[it.ID] = false
		}
	}
	return m
}

// LoadChecklist reads the saved answers over all-false defaults.
// Unknown ids and non-boolean values are dropped; an unreadable document falls back to defaults.
func LoadChecklist(store KeyValueStore) (*Checklist, error) {
	c := &Checklist{store: store, done: defaultChecklistState()}
	data, err := store.Load(ChecklistKey)
	if err != nil {
		return nil, fmt.Errorf("load checklist: %w", err)
	}
	if len(data) == 0 {
		return c, nil
	}
	var saved map[string]any
	if err := json.Unmarshal(data, &saved); err != nil {
		return c, nil
	}
	for id, v := range saved {
		b, ok := v.(bool)
		if _, known := c.done[id]; known && ok {
			c.done[id] = b
		}
	}
	return c, nil
}

// Toggle flips an item and persists the checklist. It returns the new state.
func (c *Checklist) Toggle(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.done[id]
	if !ok {
		return false, fmt.Errorf("unknown checklist item %q", id)
	}
	c.done[id] = !cur
	if err := c.saveLocked(); err != nil {
		c.done[id] = cur
		return cur, err
	}
	return !cur, nil
}

// Done reports whether an item is checked.
func (c *Checklist) Done(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done[id]
}

// State returns a copy of every item's state.
func (c *Checklist) State() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.done))
	for k, v := range c.done {
		out[k] = v
	}
	return out
}

// Progress counts checked items against the total.
func (c *Checklist) Progress() (done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.done {
		if v {
			done++
		}
	}
	return done, len(c.done)
}

func (c *Checklist) saveLocked() error {
	b, err := json.Marshal(c.done)
	if err != nil {
		return err
	}
	if err := c.store.Save(ChecklistKey, b); err != nil {
		return fmt.Errorf("save checklist: %w", err)
	}
	return nil
}
