package encounter

import (
	"fmt"
	"math"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/cadence"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/catalog"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/cooldown"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/status"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"
)

// ErrInvalidHealth is returned for participants without positive health.
var ErrInvalidHealth = apperrors.New(apperrors.CodeInvalidHealth, "health must be positive")

// Actor is the input description of a participant.
type Actor struct {
	Name string `json:"name"`
	// Base holds level stats before items and buffs.
	Base stat.Block `json:"base"`
	// HP is the starting health; 0 means full health.
	HP       int     `json:"hp,omitempty"`
	Position float64 `json:"position"`
	// Loadout lists ability ids in cast priority order.
	Loadout []string `json:"loadout"`
	// Items lists equipped item ids.
	Items []string `json:"items,omitempty"`
	// Bag lists consumable item ids available to UseItem.
	Bag []string `json:"bag,omitempty"`
	// Carried holds encounter-duration buffs left over from earlier encounters.
	Carried []status.Buff `json:"carried,omitempty"`
}

// participant is the mutable state of one side during an encounter.
type participant struct {
	id        timeline.ActorID
	name      string
	base      stat.Block
	hp        int
	position  float64
	loadout   []string
	items     []string
	bag       []string
	cooldowns *cooldown.Ledger
	statuses  *status.Ledger
	stuns     []timeline.StunPeriod
}

func newParticipant(id timeline.ActorID, a Actor, cat *catalog.Catalog) (*participant, error) {
	speed := a.Base.Get(stat.AttackSpeed)
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("%s: %w", id, cadence.ErrInvalidAttackSpeed)
	}
	if haste := a.Base.Get(stat.AbilityHaste); haste < 0 || math.IsNaN(haste) {
		return nil, fmt.Errorf("%s: %w", id, cadence.ErrInvalidAbilityHaste)
	}
	for _, abilityID := range a.Loadout {
		if _, err := cat.Ability(abilityID); err != nil {
			return nil, fmt.Errorf("%s loadout: %w", id, err)
		}
	}
	for _, itemID := range a.Items {
		if _, err := cat.Item(itemID); err != nil {
			return nil, fmt.Errorf("%s items: %w", id, err)
		}
	}
	for _, itemID := range a.Bag {
		if _, err := cat.Item(itemID); err != nil {
			return nil, fmt.Errorf("%s bag: %w", id, err)
		}
	}

	p := &participant{
		id:        id,
		name:      a.Name,
		base:      a.Base,
		position:  a.Position,
		loadout:   append([]string(nil), a.Loadout...),
		items:     append([]string(nil), a.Items...),
		bag:       append([]string(nil), a.Bag...),
		cooldowns: cooldown.New(),
		statuses:  status.Restore(a.Carried),
	}
	if p.name == "" {
		p.name = id.String()
	}

	maxHP := p.maxHP(cat)
	if maxHP <= 0 {
		return nil, fmt.Errorf("%s max health %d: %w", id, maxHP, ErrInvalidHealth)
	}
	switch {
	case a.HP < 0:
		return nil, fmt.Errorf("%s hp %d: %w", id, a.HP, ErrInvalidHealth)
	case a.HP == 0 || a.HP > maxHP:
		p.hp = maxHP
	default:
		p.hp = a.HP
	}
	return p, nil
}

// effective returns base + items + active buffs with aggregation floors.
func (p *participant) effective(cat *catalog.Catalog) stat.Block {
	total := p.base
	for _, itemID := range p.items {
		if it, err := cat.Item(itemID); err == nil {
			total = total.Add(it.Stats)
		}
	}
	return total.Add(p.statuses.Modifiers()).Effective()
}

func (p *participant) maxHP(cat *catalog.Catalog) int {
	return int(math.Floor(p.effective(cat).Get(stat.MaxHealth)))
}

func (p *participant) entity(cat *catalog.Catalog) timeline.Entity {
	eff := p.effective(cat)
	return timeline.Entity{
		ID:           p.id,
		AttackSpeed:  eff.Get(stat.AttackSpeed),
		AbilityHaste: eff.Get(stat.AbilityHaste),
		Stuns:        append([]timeline.StunPeriod(nil), p.stuns...),
	}
}

func (p *participant) alive() bool {
	return p.hp > 0
}

// damage lowers health, never below zero, and returns the amount removed.
func (p *participant) damage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > p.hp {
		amount = p.hp
	}
	p.hp -= amount
	return amount
}

// heal raises health up to maxHP and returns the amount restored.
func (p *participant) heal(amount, maxHP int) int {
	if amount <= 0 || p.hp >= maxHP {
		return 0
	}
	if p.hp+amount > maxHP {
		amount = maxHP - p.hp
	}
	p.hp += amount
	return amount
}

func (p *participant) clone() *participant {
	c := *p
	c.loadout = append([]string(nil), p.loadout...)
	c.items = append([]string(nil), p.items...)
	c.bag = append([]string(nil), p.bag...)
	c.cooldowns = p.cooldowns.Clone()
	c.statuses = p.statuses.Clone()
	c.stuns = append([]timeline.StunPeriod(nil), p.stuns...)
	return &c
}

// snapshot returns the participant as an Actor description. Only
// encounter-duration buffs are listed as carried.
func (p *participant) snapshot() Actor {
	var carried []status.Buff
	for _, b := range p.statuses.Active() {
		if b.DurationType == status.Encounters {
			carried = append(carried, b)
		}
	}
	return Actor{
		Name:     p.name,
		Base:     p.base,
		HP:       p.hp,
		Position: p.position,
		Loadout:  append([]string(nil), p.loadout...),
		Items:    append([]string(nil), p.items...),
		Bag:      append([]string(nil), p.bag...),
		Carried:  carried,
	}
}
