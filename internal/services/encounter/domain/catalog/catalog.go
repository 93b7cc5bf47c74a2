// Package catalog holds the static ability and item definitions an encounter
// reads. A Catalog is immutable once built.
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/combat"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/status"
)

var (
	// ErrUnknownAbility is returned when an ability id is not in the catalog.
	ErrUnknownAbility = apperrors.New(apperrors.CodeUnknownAbility, "unknown ability")
	// ErrUnknownItem is returned when an item id is not in the catalog.
	ErrUnknownItem = apperrors.New(apperrors.CodeUnknownItem, "unknown item")
	// ErrDuplicateID is returned when two definitions share an id.
	ErrDuplicateID = apperrors.New(apperrors.CodeCatalogDuplicateID, "duplicate catalog id")
	// ErrInvalid is returned for malformed definitions.
	ErrInvalid = apperrors.New(apperrors.CodeCatalogInvalid, "invalid catalog definition")
)

// Target selects who an effect lands on.
type Target int

const (
	// Self applies the effect to the caster.
	Self Target = iota
	// Enemy applies the effect to the other participant.
	Enemy
)

func (t Target) String() string {
	if t == Enemy {
		return "enemy"
	}
	return "self"
}

// MarshalText encodes the target by name.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes "self" or "enemy".
func (t *Target) UnmarshalText(text []byte) error {
	switch string(text) {
	case "self", "":
		*t = Self
	case "enemy":
		*t = Enemy
	default:
		return fmt.Errorf("unknown effect target %q", text)
	}
	return nil
}

// DamageSpec is an ability's damage. Scaling values are percentages of the
// caster's attack damage and ability power.
type DamageSpec struct {
	Physical  float64 `json:"physical,omitempty"`
	Magic     float64 `json:"magic,omitempty"`
	True      float64 `json:"true,omitempty"`
	ADScaling float64 `json:"ad_scaling,omitempty"`
	APScaling float64 `json:"ap_scaling,omitempty"`
}

// Strike returns the raw strike for a caster's stats.
func (d DamageSpec) Strike(caster stat.Block) combat.Strike {
	return combat.Strike{
		Physical: d.Physical + caster.Get(stat.AttackDamage)*d.ADScaling/100,
		Magic:    d.Magic + caster.Get(stat.AbilityPower)*d.APScaling/100,
		True:     d.True,
	}
}

// EffectSpec describes a buff an ability or item applies.
type EffectSpec struct {
	Group        string              `json:"group"`
	Stat         stat.Kind           `json:"stat"`
	Amount       float64             `json:"amount"`
	Duration     int                 `json:"duration"`
	DurationType status.DurationType `json:"duration_type"`
	Kind         status.Kind         `json:"kind"`
	Target       Target              `json:"target"`
	StackCap     int                 `json:"stack_cap,omitempty"`
}

// Buff returns the status buff this effect creates.
func (e EffectSpec) Buff() status.Buff {
	b := status.Buff{
		Group:        e.Group,
		Stat:         e.Stat,
		Amount:       e.Amount,
		DurationType: e.DurationType,
		Kind:         e.Kind,
	}
	if e.DurationType == status.Encounters {
		b.EncountersRemaining = e.Duration
	} else {
		b.Duration = e.Duration
	}
	return b
}

// ChangesStats reports whether the effect alters cadence-relevant stats, which
// requires the action window to be regenerated.
func (e EffectSpec) ChangesStats() bool {
	return e.Kind == status.Instant && (e.Stat == stat.AttackSpeed || e.Stat == stat.AbilityHaste)
}

// Ability is a castable spell.
type Ability struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Cooldown int              `json:"cooldown"`
	Range    float64          `json:"range"`
	CanCrit  bool             `json:"can_crit,omitempty"`
	Damage   *DamageSpec      `json:"damage,omitempty"`
	Heal     *combat.HealSpec `json:"heal,omitempty"`
	Stun     float64          `json:"stun,omitempty"`
	Effects  []EffectSpec     `json:"effects,omitempty"`
}

// TargetsEnemy reports whether casting the ability reaches the other
// participant, which makes it subject to range.
func (a Ability) TargetsEnemy() bool {
	if a.Damage != nil || a.Stun > 0 {
		return true
	}
	for _, e := range a.Effects {
		if e.Target == Enemy {
			return true
		}
	}
	return false
}

// ChangesStats reports whether any effect requires window regeneration.
func (a Ability) ChangesStats() bool {
	for _, e := range a.Effects {
		if e.ChangesStats() {
			return true
		}
	}
	return false
}

// Item is equipment or a consumable.
type Item struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Stats      stat.Block       `json:"stats"`
	Consumable bool             `json:"consumable,omitempty"`
	Heal       *combat.HealSpec `json:"heal,omitempty"`
	Effects    []EffectSpec     `json:"effects,omitempty"`
}

// Catalog is an immutable set of ability and item definitions.
type Catalog struct {
	abilities map[string]Ability
	items     map[string]Item
}

// New validates the definitions and builds a Catalog.
func New(abilities []Ability, items []Item) (*Catalog, error) {
	c := &Catalog{
		abilities: make(map[string]Ability, len(abilities)),
		items:     make(map[string]Item, len(items)),
	}
	for _, a := range abilities {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.abilities[a.ID]; ok {
			return nil, duplicate("ability", a.ID)
		}
		c.abilities[a.ID] = a
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.items[it.ID]; ok {
			return nil, duplicate("item", it.ID)
		}
		c.items[it.ID] = it
	}
	return c, nil
}

// Ability returns the ability with id.
func (c *Catalog) Ability(id string) (Ability, error) {
	a, ok := c.abilities[id]
	if !ok {
		return Ability{}, apperrors.WithMetadata(ErrUnknownAbility.Code, fmt.Sprintf("unknown ability %q", id), map[string]string{"ID": id})
	}
	return a, nil
}

// Item returns the item with id.
func (c *Catalog) Item(id string) (Item, error) {
	it, ok := c.items[id]
	if !ok {
		return Item{}, apperrors.WithMetadata(ErrUnknownItem.Code, fmt.Sprintf("unknown item %q", id), map[string]string{"ID": id})
	}
	return it, nil
}

// Abilities returns every ability sorted by id.
func (c *Catalog) Abilities() []Ability {
	out := make([]Ability, 0, len(c.abilities))
	for _, a := range c.abilities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Items returns every item sorted by id.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks an ability definition.
func (a Ability) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return invalid("ability id is required")
	}
	if a.Cooldown < 0 {
		return invalid(fmt.Sprintf("ability %s: cooldown must be non-negative", a.ID))
	}
	if !finiteNonNegative(a.Range) {
		return invalid(fmt.Sprintf("ability %s: range must be non-negative", a.ID))
	}
	if !finiteNonNegative(a.Stun) {
		return invalid(fmt.Sprintf("ability %s: stun must be non-negative", a.ID))
	}
	if a.Damage == nil && a.Heal == nil && a.Stun == 0 && len(a.Effects) == 0 {
		return invalid(fmt.Sprintf("ability %s: has no effect", a.ID))
	}
	return validateEffects("ability "+a.ID, a.Effects)
}

// Validate checks an item definition.
func (it Item) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return invalid("item id is required")
	}
	for _, k := range stat.Kinds() {
		if v := it.Stats.Get(k); math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(fmt.Sprintf("item %s: stat %s must be finite", it.ID, k))
		}
	}
	if it.Consumable && it.Heal == nil && len(it.Effects) == 0 {
		return invalid(fmt.Sprintf("item %s: consumable has no effect", it.ID))
	}
	if !it.Consumable && (it.Heal != nil || len(it.Effects) > 0) {
		return invalid(fmt.Sprintf("item %s: only consumables carry use effects", it.ID))
	}
	return validateEffects("item "+it.ID, it.Effects)
}

func validateEffects(owner string, effects []EffectSpec) error {
	for _, e := range effects {
		if strings.TrimSpace(e.Group) == "" {
			return invalid(owner + ": effect group is required")
		}
		if e.Duration < 0 {
			return invalid(fmt.Sprintf("%s: effect %s duration must be non-negative", owner, e.Group))
		}
		if e.StackCap < 0 {
			return invalid(fmt.Sprintf("%s: effect %s stack cap must be non-negative", owner, e.Group))
		}
		if !e.Stat.Valid() {
			return invalid(fmt.Sprintf("%s: effect %s has unknown stat", owner, e.Group))
		}
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func invalid(message string) error {
	return apperrors.New(ErrInvalid.Code, message)
}

func duplicate(kind, id string) error {
	return apperrors.WithMetadata(ErrDuplicateID.Code, fmt.Sprintf("duplicate %s id %q", kind, id), map[string]string{"ID": id})
}

// Document is the JSON shape of a full catalog.
type Document struct {
	Abilities []Ability `json:"abilities"`
	Items     []Item    `json:"items"`
}

// Decode parses a JSON Document and builds the Catalog.
func Decode(data []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Abilities, doc.Items)
}

// Document returns the catalog contents in JSON shape.
func (c *Catalog) Document() Document {
	return Document{Abilities: c.Abilities(), Items: c.Items()}
}
