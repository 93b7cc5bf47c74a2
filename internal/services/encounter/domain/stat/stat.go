// Package stat defines the closed set of combat stats and a block type keyed
// by them.
package stat

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
)

// Kind identifies one combat stat.
type Kind int

const (
	AttackSpeed Kind = iota
	AbilityHaste
	AttackDamage
	AbilityPower
	Armor
	MagicResist
	Lethality
	MagicPenetration
	CriticalChance
	CriticalDamage
	Tenacity
	Lifesteal
	Omnivamp
	MaxHealth
	AttackRange

	kindCount
)

// MinAttackSpeed is the floor applied to aggregated attack speed.
const MinAttackSpeed = 0.1

var kindNames = [kindCount]string{
	AttackSpeed:      "attack_speed",
	AbilityHaste:     "ability_haste",
	AttackDamage:     "attack_damage",
	AbilityPower:     "ability_power",
	Armor:            "armor",
	MagicResist:      "magic_resist",
	Lethality:        "lethality",
	MagicPenetration: "magic_penetration",
	CriticalChance:   "critical_chance",
	CriticalDamage:   "critical_damage",
	Tenacity:         "tenacity",
	Lifesteal:        "lifesteal",
	Omnivamp:         "omnivamp",
	MaxHealth:        "max_health",
	AttackRange:      "attack_range",
}

// ErrUnknown is returned when a stat name does not match any Kind.
var ErrUnknown = apperrors.New(apperrors.CodeUnknownStat, "unknown stat")

// Kinds returns every stat kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("stat(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a snake_case or space separated name to its Kind.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	for i, n := range kindNames {
		if n == normalized {
			return Kind(i), nil
		}
	}
	return 0, apperrors.WithMetadata(apperrors.CodeUnknownStat, fmt.Sprintf("unknown stat %q", name), map[string]string{"Stat": name})
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal stat: %w", ErrUnknown)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind from its name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Block holds one value per stat kind. The zero Block has every stat at 0.
type Block [kindCount]float64

// Get returns the value of k, or 0 for an invalid kind.
func (b Block) Get(k Kind) float64 {
	if !k.Valid() {
		return 0
	}
	return b[k]
}

// With returns a copy of b with k set to v.
func (b Block) With(k Kind, v float64) Block {
	if k.Valid() {
		b[k] = v
	}
	return b
}

// Add returns the element-wise sum of b and other.
func (b Block) Add(other Block) Block {
	for i := range b {
		b[i] += other[i]
	}
	return b
}

// Effective returns b with the aggregation floors applied: attack speed never
// drops below MinAttackSpeed and every other stat never drops below 0.
func (b Block) Effective() Block {
	for i := range b {
		if b[i] < 0 || math.IsNaN(b[i]) {
			b[i] = 0
		}
	}
	if b[AttackSpeed] < MinAttackSpeed {
		b[AttackSpeed] = MinAttackSpeed
	}
	return b
}

// Map returns the non-zero stats keyed by name.
func (b Block) Map() map[string]float64 {
	out := make(map[string]float64)
	for i, v := range b {
		if v != 0 {
			out[kindNames[i]] = v
		}
	}
	return out
}

// FromMap builds a Block from stats keyed by name.
func FromMap(values map[string]float64) (Block, error) {
	var b Block
	for name, v := range values {
		k, err := ParseKind(name)
		if err != nil {
			return Block{}, err
		}
		b[k] = v
	}
	return b, nil
}

// MarshalJSON encodes the block as a name-keyed object of non-zero stats.
func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Map())
}

// UnmarshalJSON decodes a name-keyed object; unknown names are rejected.
func (b *Block) UnmarshalJSON(data []byte) error {
	var values map[string]float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	parsed, err := FromMap(values)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
