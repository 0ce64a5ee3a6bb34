package formats

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

// Glyph is how an appearance is drawn in a terminal cell.
type Glyph struct {
	Rune  rune
	Color string
}

// Scenario is a decoded scenario document: a world, the characters that
// drive it and the terminal glyphs for each appearance.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Seed        int64
	Characters  world.Characters
	World       world.World
	// Glyphs maps character id -> appearance id -> glyph.
	Glyphs map[string]map[string]Glyph
}

// NewWorld returns a fresh copy of the scenario's initial world.
func (s *Scenario) NewWorld() world.World {
	return s.World.Clone()
}

// Glyph returns the glyph for an actor, falling back to the first letter of
// the character id.
func (s *Scenario) Glyph(a *world.Actor) Glyph {
	if g, ok := s.Glyphs[a.CharacterID][a.Appearance]; ok {
		return g
	}
	r, _ := utf8.DecodeRuneInString(a.CharacterID)
	if r == utf8.RuneError {
		r = '?'
	}
	return Glyph{Rune: r}
}

// FormatExtensions returns the file extensions scenario files may use.
func FormatExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

// ParseYAML parses YAML data into a Scenario.
func ParseYAML(data []byte) (*Scenario, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("formats: parse yaml: %w", err)
	}
	return doc.ToScenario()
}

// ParseJSON parses JSON data into a Scenario.
func ParseJSON(data []byte) (*Scenario, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("formats: parse json: %w", err)
	}
	return doc.ToScenario()
}

// ToScenario validates the document and builds the world model.
func (d *Document) ToScenario() (*Scenario, error) {
	if d.ID == "" {
		return nil, fmt.Errorf("formats: scenario id is required")
	}
	if len(d.Stages) == 0 {
		return nil, fmt.Errorf("formats: scenario %s has no stages", d.ID)
	}

	sc := &Scenario{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Seed:        d.Seed,
		Characters:  make(world.Characters, len(d.Characters)),
		Glyphs:      make(map[string]map[string]Glyph, len(d.Characters)),
	}
	if sc.Name == "" {
		sc.Name = d.ID
	}

	for i := range d.Characters {
		cd := &d.Characters[i]
		if cd.ID == "" {
			return nil, fmt.Errorf("formats: character %d has no id", i)
		}
		if _, dup := sc.Characters[cd.ID]; dup {
			return nil, fmt.Errorf("formats: duplicate character %s", cd.ID)
		}
		ch, glyphs, err := cd.toCharacter()
		if err != nil {
			return nil, err
		}
		sc.Characters[ch.ID] = ch
		sc.Glyphs[ch.ID] = glyphs
	}

	var stages []*world.Stage
	for i := range d.Stages {
		st, err := d.Stages[i].toStage(sc.Characters)
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}

	w := world.New(d.ID, stages[0])
	for _, st := range stages[1:] {
		if _, dup := w.Stages[st.ID]; dup {
			return nil, fmt.Errorf("formats: duplicate stage %s", st.ID)
		}
		w.Stages[st.ID] = st
	}
	for _, g := range d.Globals {
		if g.ID == "" {
			return nil, fmt.Errorf("formats: global without id")
		}
		name := g.Name
		if name == "" {
			name = g.ID
		}
		w.Globals[g.ID] = world.Global{ID: g.ID, Name: name, Value: g.Value}
	}
	if d.SelectedStage != "" {
		if _, ok := w.Stages[d.SelectedStage]; !ok {
			return nil, fmt.Errorf("formats: selected stage %s not found", d.SelectedStage)
		}
		w.SetGlobal(world.GlobalSelectedStage, d.SelectedStage)
	}
	w.Seed = d.Seed
	sc.World = w
	return sc, nil
}

func (cd *CharacterDoc) toCharacter() (*world.Character, map[string]Glyph, error) {
	ch := &world.Character{
		ID:   cd.ID,
		Name: cd.Name,
		Spritesheet: world.Spritesheet{
			Appearances:    make(map[string]string, len(cd.Appearances)),
			AppearanceInfo: make(map[string]world.AppearanceInfo),
		},
		Variables: make(map[string]world.VariableDecl, len(cd.Variables)),
	}
	glyphs := make(map[string]Glyph, len(cd.Appearances))

	for _, ad := range cd.Appearances {
		if ad.ID == "" {
			return nil, nil, fmt.Errorf("formats: character %s: appearance without id", cd.ID)
		}
		ch.Spritesheet.Appearances[ad.ID] = ad.Name
		if ad.Footprint != nil {
			ch.Spritesheet.AppearanceInfo[ad.ID] = world.AppearanceInfo{
				Width:  ad.Footprint.Width,
				Height: ad.Footprint.Height,
				Anchor: ad.Footprint.Anchor,
				Filled: append([]core.Position(nil), ad.Footprint.Filled...),
			}
		}
		if ad.Glyph != "" {
			r, _ := utf8.DecodeRuneInString(ad.Glyph)
			glyphs[ad.ID] = Glyph{Rune: r, Color: ad.Color}
		}
	}
	for _, vd := range cd.Variables {
		if vd.ID == "" {
			return nil, nil, fmt.Errorf("formats: character %s: variable without id", cd.ID)
		}
		ch.Variables[vd.ID] = world.VariableDecl{ID: vd.ID, Name: vd.Name, DefaultValue: vd.Default}
	}

	dc := decoder{character: cd.ID, seen: make(map[string]bool)}
	rules, err := dc.nodes(cd.Rules)
	if err != nil {
		return nil, nil, err
	}
	ch.Rules = rules
	return ch, glyphs, nil
}

func (sd *StageDoc) toStage(chars world.Characters) (*world.Stage, error) {
	if sd.ID == "" {
		return nil, fmt.Errorf("formats: stage without id")
	}
	if sd.Width <= 0 || sd.Height <= 0 {
		return nil, fmt.Errorf("formats: stage %s: invalid size %dx%d", sd.ID, sd.Width, sd.Height)
	}
	st := &world.Stage{
		ID:     sd.ID,
		Name:   sd.Name,
		Width:  sd.Width,
		Height: sd.Height,
		WrapX:  sd.WrapX,
		WrapY:  sd.WrapY,
		Actors: world.NewActorSet(),
	}
	for _, ad := range sd.Actors {
		a, err := ad.toActor()
		if err != nil {
			return nil, fmt.Errorf("formats: stage %s: %w", sd.ID, err)
		}
		ch, ok := chars[a.CharacterID]
		if !ok {
			return nil, fmt.Errorf("formats: stage %s: actor %s: unknown character %s", sd.ID, a.ID, a.CharacterID)
		}
		if st.Actors.Has(a.ID) {
			return nil, fmt.Errorf("formats: stage %s: duplicate actor %s", sd.ID, a.ID)
		}
		if a.Appearance == "" {
			a.Appearance = ch.DefaultAppearance()
		}
		st.Actors.Put(a)
	}
	return st, nil
}

func (ad *ActorDoc) toActor() (*world.Actor, error) {
	if ad.ID == "" {
		return nil, fmt.Errorf("actor without id")
	}
	if ad.Character == "" {
		return nil, fmt.Errorf("actor %s: character is required", ad.ID)
	}
	t := core.Transform(ad.Transform)
	if !t.Valid() {
		return nil, fmt.Errorf("actor %s: invalid transform %q", ad.ID, ad.Transform)
	}
	vars := make(map[string]string, len(ad.Variables))
	for k, v := range ad.Variables {
		vars[k] = v
	}
	return &world.Actor{
		ID:             ad.ID,
		CharacterID:    ad.Character,
		Position:       ad.Position,
		Appearance:     ad.Appearance,
		Transform:      t,
		VariableValues: vars,
	}, nil
}

// decoder converts one character's rule tree. Node ids must be unique
// within the character.
type decoder struct {
	character string
	seen      map[string]bool
}

func (dc *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("formats: character %s: %s", dc.character, fmt.Sprintf(format, args...))
}

func (dc *decoder) nodes(docs []NodeDoc) ([]world.Node, error) {
	out := make([]world.Node, 0, len(docs))
	for i := range docs {
		n, err := dc.node(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (dc *decoder) node(nd *NodeDoc) (world.Node, error) {
	if nd.ID == "" {
		return nil, dc.errorf("%s node without id", nd.Type)
	}
	if dc.seen[nd.ID] {
		return nil, dc.errorf("duplicate node id %s", nd.ID)
	}
	dc.seen[nd.ID] = true

	switch nd.Type {
	case NodeEvent:
		return dc.event(nd)
	case NodeFlow:
		return dc.flow(nd)
	case NodeRule, "":
		return dc.rule(nd)
	default:
		return nil, dc.errorf("node %s: unknown type %q", nd.ID, nd.Type)
	}
}

func (dc *decoder) event(nd *NodeDoc) (world.Node, error) {
	trigger := world.Trigger(nd.Trigger)
	switch trigger {
	case world.TriggerIdle, world.TriggerClick:
	case world.TriggerKey:
		if nd.Key == "" {
			return nil, dc.errorf("event %s: key trigger needs a key", nd.ID)
		}
	default:
		return nil, dc.errorf("event %s: unknown trigger %q", nd.ID, nd.Trigger)
	}
	children, err := dc.nodes(nd.Rules)
	if err != nil {
		return nil, err
	}
	return &world.EventGroup{ID: nd.ID, Name: nd.Name, Trigger: trigger, Key: nd.Key, Rules: children}, nil
}

func (dc *decoder) flow(nd *NodeDoc) (world.Node, error) {
	behavior := world.Behavior(nd.Behavior)
	if behavior == "" {
		behavior = world.BehaviorFirst
	}
	switch behavior {
	case world.BehaviorFirst, world.BehaviorRandom, world.BehaviorAll, world.BehaviorLoop:
	default:
		return nil, dc.errorf("flow %s: unknown behavior %q", nd.ID, nd.Behavior)
	}
	var loop world.LoopCount
	if nd.Loop != nil {
		loop = world.LoopCount{Constant: nd.Loop.Constant, Variable: nd.Loop.Variable}
	}
	children, err := dc.nodes(nd.Rules)
	if err != nil {
		return nil, err
	}
	return &world.FlowGroup{ID: nd.ID, Name: nd.Name, Behavior: behavior, Loop: loop, Rules: children}, nil
}

func (dc *decoder) rule(nd *NodeDoc) (world.Node, error) {
	if nd.MainActor == "" {
		return nil, dc.errorf("rule %s: main_actor is required", nd.ID)
	}
	actors := world.NewActorSet()
	for i := range nd.Actors {
		a, err := nd.Actors[i].toActor()
		if err != nil {
			return nil, dc.errorf("rule %s: %v", nd.ID, err)
		}
		if actors.Has(a.ID) {
			return nil, dc.errorf("rule %s: duplicate actor %s", nd.ID, a.ID)
		}
		actors.Put(a)
	}
	main, ok := actors.Get(nd.MainActor)
	if !ok {
		return nil, dc.errorf("rule %s: main actor %s is not a rule actor", nd.ID, nd.MainActor)
	}
	if main.Position != (core.Position{}) {
		return nil, dc.errorf("rule %s: main actor must sit at the origin", nd.ID)
	}

	r := &world.Rule{
		ID:          nd.ID,
		Name:        nd.Name,
		MainActorID: nd.MainActor,
		Actors:      actors,
		Extent:      boundingExtent(actors),
	}
	if nd.Extent != nil {
		r.Extent = world.Extent{
			XMin: nd.Extent.XMin, XMax: nd.Extent.XMax,
			YMin: nd.Extent.YMin, YMax: nd.Extent.YMax,
		}
		if r.Extent.XMin > r.Extent.XMax || r.Extent.YMin > r.Extent.YMax {
			return nil, dc.errorf("rule %s: empty extent", nd.ID)
		}
		if !r.Extent.Contains(core.Position{}) {
			return nil, dc.errorf("rule %s: extent must contain the main actor", nd.ID)
		}
	}
	if nd.Extent != nil && len(nd.Extent.Ignored) > 0 {
		r.Extent.Ignored = make(map[core.Position]bool, len(nd.Extent.Ignored))
		for _, p := range nd.Extent.Ignored {
			r.Extent.Ignored[p] = true
		}
	}

	for _, cd := range nd.Conditions {
		c, err := dc.condition(nd.ID, cd)
		if err != nil {
			return nil, err
		}
		r.Conditions = append(r.Conditions, c)
	}
	for i := range nd.Actions {
		a, err := dc.action(nd.ID, &nd.Actions[i])
		if err != nil {
			return nil, err
		}
		r.Actions = append(r.Actions, a)
	}
	return r, nil
}

// boundingExtent covers every template actor, the main actor included.
func boundingExtent(actors *world.ActorSet) world.Extent {
	var e world.Extent
	for _, a := range actors.All() {
		e.XMin = core.Min(e.XMin, a.Position.X)
		e.XMax = core.Max(e.XMax, a.Position.X)
		e.YMin = core.Min(e.YMin, a.Position.Y)
		e.YMax = core.Max(e.YMax, a.Position.Y)
	}
	return e
}

func (dc *decoder) condition(ruleID string, cd ConditionDoc) (world.Condition, error) {
	cmp := world.Comparator(cd.Comparator)
	if !cmp.Valid() {
		return world.Condition{}, dc.errorf("rule %s: condition %s: unknown comparator %q", ruleID, cd.Key, cd.Comparator)
	}
	left, err := dc.value(ruleID, cd.Left)
	if err != nil {
		return world.Condition{}, err
	}
	right, err := dc.value(ruleID, cd.Right)
	if err != nil {
		return world.Condition{}, err
	}
	enabled := true
	if cd.Enabled != nil {
		enabled = *cd.Enabled
	}
	return world.Condition{Key: cd.Key, Enabled: enabled, Left: left, Right: right, Comparator: cmp}, nil
}

func (dc *decoder) value(ruleID string, vd ValueDoc) (world.RuleValue, error) {
	switch vd.Type {
	case ValueConstant, "":
		return world.Constant{Value: vd.Value}, nil
	case ValueActor:
		if vd.Actor == "" || vd.Variable == "" {
			return nil, dc.errorf("rule %s: actor value needs actor and variable", ruleID)
		}
		return world.ActorVariable{ActorID: vd.Actor, Variable: vd.Variable}, nil
	case ValueGlobal:
		if vd.Global == "" {
			return nil, dc.errorf("rule %s: global value needs a global", ruleID)
		}
		return world.GlobalRef{Global: vd.Global}, nil
	default:
		return nil, dc.errorf("rule %s: unknown value type %q", ruleID, vd.Type)
	}
}

func (dc *decoder) action(ruleID string, ad *ActionDoc) (world.Action, error) {
	anim := world.AnimationStyle(ad.Animation)
	switch anim {
	case "":
		anim = world.AnimationLinear
	case world.AnimationLinear, world.AnimationSkip:
	default:
		return nil, dc.errorf("rule %s: unknown animation %q", ruleID, ad.Animation)
	}

	needActor := func() error {
		if ad.Actor == "" {
			return dc.errorf("rule %s: %s action needs an actor", ruleID, ad.Type)
		}
		return nil
	}
	operation := func() (world.Operation, error) {
		op := world.Operation(ad.Operation)
		switch op {
		case "":
			return world.OpSet, nil
		case world.OpSet, world.OpAdd, world.OpSubtract:
			return op, nil
		}
		return "", dc.errorf("rule %s: unknown operation %q", ruleID, ad.Operation)
	}
	value := func() (world.RuleValue, error) {
		if ad.Value == nil {
			return nil, dc.errorf("rule %s: %s action needs a value", ruleID, ad.Type)
		}
		return dc.value(ruleID, *ad.Value)
	}

	switch ad.Type {
	case "move":
		if err := needActor(); err != nil {
			return nil, err
		}
		if (ad.Delta == nil) == (ad.Offset == nil) {
			return nil, dc.errorf("rule %s: move needs exactly one of delta or offset", ruleID)
		}
		return &world.MoveAction{ActorID: ad.Actor, Delta: ad.Delta, Offset: ad.Offset, Animation: anim}, nil

	case "delete":
		if err := needActor(); err != nil {
			return nil, err
		}
		return &world.DeleteAction{ActorID: ad.Actor, Animation: anim}, nil

	case "create":
		if ad.Template == nil {
			return nil, dc.errorf("rule %s: create needs a template", ruleID)
		}
		tpl, err := ad.Template.toActor()
		if err != nil {
			return nil, dc.errorf("rule %s: create: %v", ruleID, err)
		}
		var offset core.Position
		if ad.Offset != nil {
			offset = *ad.Offset
		}
		return &world.CreateAction{Actor: tpl, Offset: offset, Animation: anim}, nil

	case "appearance":
		if err := needActor(); err != nil {
			return nil, err
		}
		v, err := value()
		if err != nil {
			return nil, err
		}
		return &world.AppearanceAction{ActorID: ad.Actor, Value: v, Animation: anim}, nil

	case "transform":
		if err := needActor(); err != nil {
			return nil, err
		}
		op, err := operation()
		if err != nil {
			return nil, err
		}
		v, err := value()
		if err != nil {
			return nil, err
		}
		if c, ok := v.(world.Constant); ok && !core.Transform(c.Value).Valid() {
			return nil, dc.errorf("rule %s: invalid transform %q", ruleID, c.Value)
		}
		return &world.TransformAction{ActorID: ad.Actor, Operation: op, Value: v, Animation: anim}, nil

	case "variable":
		if err := needActor(); err != nil {
			return nil, err
		}
		if ad.Variable == "" {
			return nil, dc.errorf("rule %s: variable action needs a variable", ruleID)
		}
		op, err := operation()
		if err != nil {
			return nil, err
		}
		v, err := value()
		if err != nil {
			return nil, err
		}
		return &world.VariableAction{ActorID: ad.Actor, Variable: ad.Variable, Operation: op, Value: v, Animation: anim}, nil

	case "global":
		if ad.Global == "" {
			return nil, dc.errorf("rule %s: global action needs a global", ruleID)
		}
		op, err := operation()
		if err != nil {
			return nil, err
		}
		v, err := value()
		if err != nil {
			return nil, err
		}
		return &world.GlobalAction{Global: ad.Global, Operation: op, Value: v}, nil

	default:
		return nil, dc.errorf("rule %s: unknown action type %q", ruleID, ad.Type)
	}
}
