package stat

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Kind
		wantErr bool
	}{
		{name: "snake case", input: "attack_speed", want: AttackSpeed},
		{name: "spaces", input: "Magic Resist", want: MagicResist},
		{name: "dashes", input: "critical-chance", want: CriticalChance},
		{name: "unknown", input: "mana", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknown) {
					t.Fatalf("err = %v, want ErrUnknown", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKindsRoundTripThroughNames(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("parse %v: %v", k, err)
		}
		if got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestBlockWithAndAdd(t *testing.T) {
	base := Block{}.With(Armor, 30).With(AttackDamage, 60)
	bonus := Block{}.With(Armor, 20)

	sum := base.Add(bonus)
	if sum.Get(Armor) != 50 {
		t.Fatalf("armor = %v, want 50", sum.Get(Armor))
	}
	if base.Get(Armor) != 30 {
		t.Fatalf("base armor mutated to %v", base.Get(Armor))
	}
	if (Block{}).Get(Kind(99)) != 0 {
		t.Fatal("expected invalid kind to read as 0")
	}
}

func TestBlockEffectiveFloors(t *testing.T) {
	b := Block{}.With(AttackSpeed, -0.5).With(Armor, -10).With(AttackDamage, 40)
	eff := b.Effective()
	if eff.Get(AttackSpeed) != MinAttackSpeed {
		t.Fatalf("attack speed = %v, want %v", eff.Get(AttackSpeed), MinAttackSpeed)
	}
	if eff.Get(Armor) != 0 {
		t.Fatalf("armor = %v, want 0", eff.Get(Armor))
	}
	if eff.Get(AttackDamage) != 40 {
		t.Fatalf("attack damage = %v, want 40", eff.Get(AttackDamage))
	}
}

func TestBlockJSON(t *testing.T) {
	var b Block
	if err := json.Unmarshal([]byte(`{"armor": 25, "attack_speed": 1.2}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Get(Armor) != 25 || b.Get(AttackSpeed) != 1.2 {
		t.Fatalf("block = %v", b.Map())
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"armor":25,"attack_speed":1.2}` {
		t.Fatalf("json = %s", data)
	}

	if err := json.Unmarshal([]byte(`{"mana": 5}`), &b); !errors.Is(err, ErrUnknown) {
		t.Fatalf("err = %v, want ErrUnknown", err)
	}
}
