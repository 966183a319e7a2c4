package evaluator

import (
	"testing"

	"github.com/vfrnav/adr/internal/condition"
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/uuid"
)

func TestEvaluateForbiddenRejectsMatchingPlan(t *testing.T) {
	pointID := uuid.UUID{9}
	fr := &model.FlightRestrictionSlice{
		Ident: "LF001",
		Type:  model.RestrictionTypeForbidden,
		Condition: model.Condition{
			Kind:          model.ConditionConstant,
			ConstantValue: true,
		},
		Restrictions: model.Restrictions{
			model.RestrictionSequence{
				{Kind: model.RestrictionElementPoint, Wpt0: model.Ref{ID: pointID}},
			},
		},
	}
	rule := PrepareRule(fr, condition.SimplifyContext{})
	plan := condition.Plan{Waypoints: []condition.Waypoint{{ID: pointID}}}

	results := Evaluate([]Rule{rule}, plan, nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(results))
	}
	if results[0].TypeChar != 'F' {
		t.Fatalf("expected type char F, got %c", results[0].TypeChar)
	}
}

func TestEvaluateForbiddenAllowsNonMatchingPlan(t *testing.T) {
	fr := &model.FlightRestrictionSlice{
		Ident: "LF002",
		Type:  model.RestrictionTypeForbidden,
		Condition: model.Condition{
			Kind:          model.ConditionConstant,
			ConstantValue: true,
		},
		Restrictions: model.Restrictions{
			model.RestrictionSequence{
				{Kind: model.RestrictionElementPoint, Wpt0: model.Ref{ID: uuid.UUID{9}}},
			},
		},
	}
	rule := PrepareRule(fr, condition.SimplifyContext{})
	plan := condition.Plan{Waypoints: []condition.Waypoint{{ID: uuid.UUID{1}}}}

	results := Evaluate([]Rule{rule}, plan, nil)
	if len(results) != 0 {
		t.Fatalf("expected no rejection, got %d", len(results))
	}
}

func TestEvaluateClosedRejectsUnconditionally(t *testing.T) {
	fr := &model.FlightRestrictionSlice{
		Ident: "LF003",
		Type:  model.RestrictionTypeClosed,
		Condition: model.Condition{
			Kind:          model.ConditionConstant,
			ConstantValue: true,
		},
	}
	rule := PrepareRule(fr, condition.SimplifyContext{})
	results := Evaluate([]Rule{rule}, condition.Plan{}, nil)
	if len(results) != 1 || results[0].TypeChar != 'C' {
		t.Fatalf("expected one closed rejection, got %+v", results)
	}
}

func TestEvaluateMandatoryRequiresMatch(t *testing.T) {
	pointID := uuid.UUID{5}
	fr := &model.FlightRestrictionSlice{
		Ident: "LF004",
		Type:  model.RestrictionTypeMandatory,
		Condition: model.Condition{
			Kind:          model.ConditionConstant,
			ConstantValue: true,
		},
		Restrictions: model.Restrictions{
			model.RestrictionSequence{
				{Kind: model.RestrictionElementPoint, Wpt0: model.Ref{ID: pointID}},
			},
		},
	}
	rule := PrepareRule(fr, condition.SimplifyContext{})

	missing := Evaluate([]Rule{rule}, condition.Plan{}, nil)
	if len(missing) != 1 {
		t.Fatalf("expected mandatory rejection when no sequence matches, got %d", len(missing))
	}

	present := Evaluate([]Rule{rule}, condition.Plan{Waypoints: []condition.Waypoint{{ID: pointID}}}, nil)
	if len(present) != 0 {
		t.Fatalf("expected no rejection once the mandatory sequence matches, got %d", len(present))
	}
}

func TestEvaluateNoShortCircuitAcrossRules(t *testing.T) {
	mkClosed := func(ident string) *model.FlightRestrictionSlice {
		return &model.FlightRestrictionSlice{
			Ident: ident,
			Type:  model.RestrictionTypeClosed,
			Condition: model.Condition{
				Kind:          model.ConditionConstant,
				ConstantValue: true,
			},
		}
	}
	r1 := PrepareRule(mkClosed("A"), condition.SimplifyContext{})
	r2 := PrepareRule(mkClosed("B"), condition.SimplifyContext{})

	results := Evaluate([]Rule{r1, r2}, condition.Plan{}, nil)
	if len(results) != 2 {
		t.Fatalf("expected both rules to contribute a failure, got %d", len(results))
	}
}
