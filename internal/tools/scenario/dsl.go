package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a named list of steps built by a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted instruction. Args hold plain Go values converted from
// Lua: strings, bools, ints for integral numbers, float64 otherwise, and
// []any or map[string]any for tables.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it builds.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenario runs Lua source and returns the Scenario it builds.
func LoadScenario(source string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runChunk(state)
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerScenarioType(state)
	registerScenarioConstructor(state)
	return state
}

func runChunk(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "seed", Function: scenarioSeed},
	{Name: "config", Function: scenarioConfig},
	{Name: "actor", Function: scenarioActor},
	{Name: "step", Function: scenarioStep},
	{Name: "run_until_turn", Function: scenarioRunUntilTurn},
	{Name: "run_to_end", Function: scenarioRunToEnd},
	{Name: "move", Function: scenarioMove},
	{Name: "equip", Function: actorItemStep("equip")},
	{Name: "unequip", Function: actorItemStep("unequip")},
	{Name: "use_item", Function: actorItemStep("use_item")},
	{Name: "cleanse", Function: scenarioCleanse},
	{Name: "level_up", Function: scenarioLevelUp},
	{Name: "regenerate", Function: scenarioRegenerate},
	{Name: "expect_hp", Function: scenarioExpectHP},
	{Name: "expect_cooldown", Function: scenarioExpectCooldown},
	{Name: "expect_buffs", Function: scenarioExpectBuffs},
	{Name: "expect_outcome", Function: scenarioExpectOutcome},
	{Name: "expect_result", Function: scenarioExpectResult},
	{Name: "expect_turn", Function: scenarioExpectTurn},
}

func scenarioSeed(state *lua.State) int {
	scenario := checkScenario(state)
	seed := lua.CheckInteger(state, 2)
	appendStep(scenario, "seed", map[string]any{"value": seed})
	return 0
}

func scenarioConfig(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "config", tableToMap(state, 2))
	return 0
}

func scenarioActor(state *lua.State) int {
	scenario := checkScenario(state)
	side := lua.CheckString(state, 2)
	data := optionalTable(state, 3)
	data["actor"] = side
	appendStep(scenario, "actor", data)
	return 0
}

func scenarioStep(state *lua.State) int {
	scenario := checkScenario(state)
	count := 1
	if !state.IsNoneOrNil(2) {
		count = lua.CheckInteger(state, 2)
	}
	if count <= 0 {
		lua.ArgumentError(state, 2, "step count must be positive")
		return 0
	}
	appendStep(scenario, "step", map[string]any{"count": count})
	return 0
}

func scenarioRunUntilTurn(state *lua.State) int {
	scenario := checkScenario(state)
	turn := lua.CheckInteger(state, 2)
	appendStep(scenario, "run_until_turn", map[string]any{"turn": turn})
	return 0
}

func scenarioRunToEnd(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "run_to_end", nil)
	return 0
}

func scenarioMove(state *lua.State) int {
	scenario := checkScenario(state)
	side := lua.CheckString(state, 2)
	delta := lua.CheckNumber(state, 3)
	appendStep(scenario, "move", map[string]any{"actor": side, "delta": delta})
	return 0
}

func actorItemStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		side := lua.CheckString(state, 2)
		item := lua.CheckString(state, 3)
		appendStep(scenario, kind, map[string]any{"actor": side, "item": item})
		return 0
	}
}

func scenarioCleanse(state *lua.State) int {
	scenario := checkScenario(state)
	side := lua.CheckString(state, 2)
	appendStep(scenario, "cleanse", map[string]any{"actor": side})
	return 0
}

func scenarioLevelUp(state *lua.State) int {
	scenario := checkScenario(state)
	side := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	appendStep(scenario, "level_up", map[string]any{"actor": side, "stats": tableToMap(state, 3)})
	return 0
}

func scenarioRegenerate(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "regenerate", nil)
	return 0
}

func scenarioExpectHP(state *lua.State) int {
	scenario := checkScenario(state)
	side := lua.CheckString(state, 2)
	hp := lua.CheckInteger(state, 3)
	appendStep(scenario, "expect_hp", map[string]any{"actor": side, "hp": hp})
	return 0
}

func scenarioExpectCooldown(state *lua.State) int {
	scenario := checkScenario(state)
	side := lua.CheckString(state, 2)
	ability := lua.CheckString(state, 3)
	turns := lua.CheckInteger(state, 4)
	appendStep(scenario, "expect_cooldown", map[string]any{"actor": side, "ability": ability, "turns": turns})
	return 0
}

func scenarioExpectBuffs(state *lua.State) int {
	scenario := checkScenario(state)
	side := lua.CheckString(state, 2)
	group := lua.CheckString(state, 3)
	count := lua.CheckInteger(state, 4)
	appendStep(scenario, "expect_buffs", map[string]any{"actor": side, "group": group, "count": count})
	return 0
}

func scenarioExpectOutcome(state *lua.State) int {
	scenario := checkScenario(state)
	outcome := lua.CheckString(state, 2)
	appendStep(scenario, "expect_outcome", map[string]any{"outcome": outcome})
	return 0
}

func scenarioExpectResult(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "expect_result", tableToMap(state, 2))
	return 0
}

func scenarioExpectTurn(state *lua.State) int {
	scenario := checkScenario(state)
	turn := lua.CheckInteger(state, 2)
	appendStep(scenario, "expect_turn", map[string]any{"turn": turn})
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
