package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Project is the root of a planning document.
type Project struct {
	Name       string    `json:"project"`
	LastUpdate Timestamp `json:"last_update"`
	Phases     PhaseList `json:"phases"`
}

// Phase is a named, ordered stage of a project.
type Phase struct {
	ID        string `json:"-"` // key in the phases object
	Name      string `json:"name"`
	Completed bool   `json:"executed"`
	Tasks     []Task `json:"tasks"`
}

// Task is a unit of work. Subtasks are owned inline.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Completed   bool      `json:"executed"`
	Subtasks    []Task    `json:"subtasks,omitempty"`
	ParentID    string    `json:"parentId,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// NewProject returns an empty project stamped with now.
func NewProject(name string, now time.Time) *Project {
	return &Project{
		Name:       name,
		LastUpdate: At(now),
		Phases:     PhaseList{},
	}
}

// Touch records now as the project's last update.
func (p *Project) Touch(now time.Time) {
	p.LastUpdate = At(now)
}

// MarshalJSON encodes the phase with a non-null tasks array.
func (ph Phase) MarshalJSON() ([]byte, error) {
	type phaseDoc Phase
	doc := phaseDoc(ph)
	if doc.Tasks == nil {
		doc.Tasks = []Task{}
	}
	return json.Marshal(doc)
}

// PhaseList is the ordered set of phases. It encodes as a JSON object whose
// key order is the list order.
type PhaseList []*Phase

// Get returns the phase with id, or nil.
func (l PhaseList) Get(id string) *Phase {
	if i := l.Index(id); i >= 0 {
		return l[i]
	}
	return nil
}

// Index returns the position of the phase with id, or -1.
func (l PhaseList) Index(id string) int {
	for i, ph := range l {
		if ph.ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the phase ids in order.
func (l PhaseList) IDs() []string {
	ids := make([]string, len(l))
	for i, ph := range l {
		ids[i] = ph.ID
	}
	return ids
}

// MarshalJSON writes the phases as an ordered JSON object.
func (l PhaseList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ph := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ph.ID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(ph)
		if err != nil {
			return nil, fmt.Errorf("phase %q: %w", ph.ID, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a phases object keeping key order. A repeated key
// replaces the earlier phase in place.
func (l *PhaseList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = PhaseList{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("phases: expected object, got %v", tok)
	}

	list := PhaseList{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("phases: expected key, got %v", tok)
		}
		ph := &Phase{}
		if err := dec.Decode(ph); err != nil {
			return fmt.Errorf("phase %q: %w", key, err)
		}
		ph.ID = key
		if i := list.Index(key); i >= 0 {
			list[i] = ph
			continue
		}
		list = append(list, ph)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = list
	return nil
}

// Timestamp is an instant encoded as RFC 3339 in UTC.
type Timestamp struct {
	time.Time
}

// At wraps t as a UTC Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006, 15:04:05",
	"02/01/2006",
}

// ParseTimestamp accepts RFC 3339 and the plain date layouts older documents
// used.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// MarshalJSON encodes the timestamp as an RFC 3339 string; zero is "".
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes any layout ParseTimestamp accepts.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := &Project{
		Name:       p.Name,
		LastUpdate: p.LastUpdate,
		Phases:     make(PhaseList, len(p.Phases)),
	}
	for i, ph := range p.Phases {
		c.Phases[i] = &Phase{
			ID:        ph.ID,
			Name:      ph.Name,
			Completed: ph.Completed,
			Tasks:     cloneTasks(ph.Tasks),
		}
	}
	return c
}

func cloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t
		out[i].Subtasks = cloneTasks(t.Subtasks)
	}
	return out
}
