// Package dataset holds the compact on-disk dataset, the resolved runtime
// entities and the merge that turns one into the other.
package dataset

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/abrezinsky/m8keys/internal/keypress"
)

// Category is a flat grouping referenced by screens and activities.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// KeyDef describes a device key. Carried through resolution untouched.
type KeyDef struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Classes []string `json:"classes" yaml:"classes"`
}

// AssetRef is a named static asset. Carried through resolution untouched.
type AssetRef struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
	URL  string `json:"url" yaml:"url"`
}

// ActivityTemplate is the screen-independent definition of one task.
type ActivityTemplate struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	CategoryIDs []string          `json:"categoryIds" yaml:"categoryIds"`
	Keypress    keypress.Sequence `json:"keypress" yaml:"keypress"`
	Description string            `json:"description" yaml:"description"`
	Level       Level             `json:"level,omitempty" yaml:"level,omitempty"`
}

// ScreenActivityRef points a screen at a template. A bare string in the
// file sets only ID; the object form may also override fields. Nil pointers
// and a zero Level mean "use the template value".
type ScreenActivityRef struct {
	ID          string
	Media       *string
	Name        *string
	Description *string
	Level       Level
}

type refObject struct {
	ID          string  `json:"id" yaml:"id"`
	Media       *string `json:"media,omitempty" yaml:"media,omitempty"`
	Name        *string `json:"name,omitempty" yaml:"name,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Level       Level   `json:"level,omitempty" yaml:"level,omitempty"`
}

// Ref is shorthand for a bare reference.
func Ref(id string) ScreenActivityRef {
	return ScreenActivityRef{ID: id}
}

// IsBare reports whether the ref carries no overrides.
func (r ScreenActivityRef) IsBare() bool {
	return r.Media == nil && r.Name == nil && r.Description == nil && r.Level == 0
}

// Overrides returns the fields that supersede the template.
func (r ScreenActivityRef) Overrides() Overrides {
	return Overrides{Name: r.Name, Description: r.Description, Level: r.Level}
}

func (r ScreenActivityRef) MarshalJSON() ([]byte, error) {
	if r.IsBare() {
		return json.Marshal(r.ID)
	}
	return json.Marshal(refObject(r))
}

func (r *ScreenActivityRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = ScreenActivityRef{ID: id}
		return nil
	}
	var obj refObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("activity ref must be a string or an object: %w", err)
	}
	if obj.ID == "" {
		return fmt.Errorf("activity ref object is missing id")
	}
	*r = ScreenActivityRef(obj)
	return nil
}

func (r ScreenActivityRef) MarshalYAML() (any, error) {
	if r.IsBare() {
		return r.ID, nil
	}
	return refObject(r), nil
}

func (r *ScreenActivityRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = ScreenActivityRef{ID: node.Value}
		return nil
	case yaml.MappingNode:
		var obj refObject
		if err := node.Decode(&obj); err != nil {
			return err
		}
		if obj.ID == "" {
			return fmt.Errorf("line %d: activity ref object is missing id", node.Line)
		}
		*r = ScreenActivityRef(obj)
		return nil
	}
	return fmt.Errorf("line %d: activity ref must be a string or a mapping", node.Line)
}

// ScreenData is a screen as stored in the compact file.
type ScreenData struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Aliases     []string            `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	CategoryIDs []string            `json:"categoryIds" yaml:"categoryIds"`
	Description string              `json:"description" yaml:"description"`
	Img         string              `json:"img" yaml:"img"`
	MediaFolder string              `json:"mediaFolder,omitempty" yaml:"mediaFolder,omitempty"`
	Activities  []ScreenActivityRef `json:"activities" yaml:"activities"`
}

// CompactDataset is the file format: templates defined once, screens
// referencing them.
type CompactDataset struct {
	Screens    []ScreenData       `json:"screens" yaml:"screens"`
	Activities []ActivityTemplate `json:"activities" yaml:"activities"`
	Categories []Category         `json:"categories" yaml:"categories"`
	Keys       []KeyDef           `json:"keys" yaml:"keys"`
	Assets     []AssetRef         `json:"assets" yaml:"assets"`
}

// Media holds the synthesized per-screen media paths of an activity.
type Media struct {
	Video     string `json:"video"`
	EventsURL string `json:"eventsUrl"`
}

// Activity is a template merged with one screen's overrides.
type Activity struct {
	ID          string            `json:"id"`
	TemplateID  string            `json:"templateId"`
	ScreenID    string            `json:"screenId"`
	Name        string            `json:"name"`
	Aliases     []string          `json:"aliases"`
	CategoryIDs []string          `json:"categoryIds"`
	Keypress    keypress.Sequence `json:"keypress"`
	Description string            `json:"description"`
	Level       Level             `json:"level,omitempty"`
	Media       Media             `json:"media"`
}

// EffectiveLevel is the activity's level, or 1 when none is set.
func (a Activity) EffectiveLevel() Level {
	if a.Level == 0 {
		return 1
	}
	return a.Level
}

// Screen is a resolved screen. ActivityIDs lists composite ids in source order.
type Screen struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	CategoryIDs []string `json:"categoryIds"`
	Description string   `json:"description"`
	Img         string   `json:"img"`
	MediaFolder string   `json:"mediaFolder"`
	ActivityIDs []string `json:"activityIds"`
}

// Dataset is the resolved, read-only runtime dataset.
type Dataset struct {
	Screens    []Screen   `json:"screens"`
	Activities []Activity `json:"activities"`
	Categories []Category `json:"categories"`
	Keys       []KeyDef   `json:"keys"`
	Assets     []AssetRef `json:"assets"`
}
