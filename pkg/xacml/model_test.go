package xacml

import "testing"

func TestNewAttributeRejectsEmptyID(t *testing.T) {
	if _, err := NewAttribute(""); err == nil {
		t.Fatal("expected error for empty attribute id")
	}
}

func TestNewAttributeDefaultDataType(t *testing.T) {
	a, err := NewAttribute("urn:x:sub")
	if err != nil {
		t.Fatal(err)
	}
	if a.EffectiveDataType() != DefaultDataType {
		t.Fatalf("got %q, want %q", a.EffectiveDataType(), DefaultDataType)
	}
	a.DataType = "http://www.w3.org/2001/XMLSchema#anyURI"
	if a.EffectiveDataType() != "http://www.w3.org/2001/XMLSchema#anyURI" {
		t.Fatalf("explicit DataType was overridden")
	}
}

func TestAttributeAddValuePreservesOrder(t *testing.T) {
	a, err := NewAttribute("urn:x:roles")
	if err != nil {
		t.Fatal(err)
	}
	a.AddValue("admin")
	a.AddValue("operator")
	if len(a.Values) != 2 || a.Values[0] != "admin" || a.Values[1] != "operator" {
		t.Fatalf("got %v", a.Values)
	}
}

func TestNewObligationRejectsInvalidFulfillOn(t *testing.T) {
	if _, err := NewObligation("urn:x:log", FulfillOn(99)); err == nil {
		t.Fatal("expected error for invalid FulfillOn")
	}
}

func TestNewAttributeAssignmentRejectsEmptyID(t *testing.T) {
	if _, err := NewAttributeAssignment(""); err == nil {
		t.Fatal("expected error for empty attribute assignment id")
	}
}

func TestDecisionValid(t *testing.T) {
	for _, d := range []Decision{Permit, Deny, Indeterminate, NotApplicable} {
		if !d.Valid() {
			t.Fatalf("%q should be valid", d)
		}
	}
	if Decision("Maybe").Valid() {
		t.Fatal("\"Maybe\" should not be a valid decision")
	}
}

func TestRequestAddAndSet(t *testing.T) {
	req := NewRequest()
	req.AddSubject(Subject{Category: "subject"})
	req.AddResource(Resource{Category: "resource"})
	req.SetAction(Action{Category: "action"})
	req.SetEnvironment(Environment{Category: "environment"})

	if len(req.Subjects) != 1 || len(req.Resources) != 1 {
		t.Fatalf("got %d subjects, %d resources", len(req.Subjects), len(req.Resources))
	}
	if req.Action == nil || req.Action.Category != "action" {
		t.Fatalf("got action %+v", req.Action)
	}
	if req.Environment == nil || req.Environment.Category != "environment" {
		t.Fatalf("got environment %+v", req.Environment)
	}
}
