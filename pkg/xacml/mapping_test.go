package xacml

import (
	"fmt"
	"testing"

	"github.com/enricovianello/pep-go/pkg/base64x"
	"github.com/enricovianello/pep-go/pkg/buffer"
	"github.com/enricovianello/pep-go/pkg/hessian"
)

func attrsWithValues(prefix string, n, values int) []Attribute {
	attrs := make([]Attribute, 0, n)
	for i := 0; i < n; i++ {
		a := Attribute{ID: fmt.Sprintf("%s-attr-%d", prefix, i), Issuer: "issuer"}
		for j := 0; j < values; j++ {
			a.AddValue(fmt.Sprintf("%s-attr-%d-value-%d", prefix, i, j))
		}
		attrs = append(attrs, a)
	}
	return attrs
}

func buildSampleRequest() *Request {
	req := NewRequest()
	for i := 0; i < 3; i++ {
		req.AddSubject(Subject{
			Category:   "urn:oasis:names:tc:xacml:1.0:subject-category:access-subject",
			Attributes: attrsWithValues(fmt.Sprintf("subject-%d", i), 3, 3),
		})
	}
	for i := 0; i < 2; i++ {
		req.AddResource(Resource{
			Category:   "urn:oasis:names:tc:xacml:3.0:attribute-category:resource",
			Attributes: attrsWithValues(fmt.Sprintf("resource-%d", i), 3, 3),
		})
	}
	req.SetAction(Action{
		Category:   "urn:oasis:names:tc:xacml:3.0:attribute-category:action",
		Attributes: attrsWithValues("action", 3, 3),
	})
	req.SetEnvironment(Environment{
		Category:   "urn:oasis:names:tc:xacml:3.0:attribute-category:environment",
		Attributes: attrsWithValues("environment", 3, 3),
	})
	return req
}

func requestsEqual(t *testing.T, got, want *Request) {
	t.Helper()
	if len(got.Subjects) != len(want.Subjects) {
		t.Fatalf("subjects: got %d, want %d", len(got.Subjects), len(want.Subjects))
	}
	for i := range want.Subjects {
		gs, ws := got.Subjects[i], want.Subjects[i]
		if gs.Category != ws.Category {
			t.Fatalf("subject[%d].Category: got %q, want %q", i, gs.Category, ws.Category)
		}
		attributesEqual(t, fmt.Sprintf("subject[%d]", i), gs.Attributes, ws.Attributes)
	}
	if len(got.Resources) != len(want.Resources) {
		t.Fatalf("resources: got %d, want %d", len(got.Resources), len(want.Resources))
	}
	for i := range want.Resources {
		gr, wr := got.Resources[i], want.Resources[i]
		if gr.Category != wr.Category || gr.HasContent != wr.HasContent || gr.Content != wr.Content {
			t.Fatalf("resource[%d]: got %+v, want %+v", i, gr, wr)
		}
		attributesEqual(t, fmt.Sprintf("resource[%d]", i), gr.Attributes, wr.Attributes)
	}
	if (got.Action == nil) != (want.Action == nil) {
		t.Fatalf("action presence mismatch: got %v, want %v", got.Action, want.Action)
	}
	if want.Action != nil {
		if got.Action.Category != want.Action.Category {
			t.Fatalf("action.Category: got %q, want %q", got.Action.Category, want.Action.Category)
		}
		attributesEqual(t, "action", got.Action.Attributes, want.Action.Attributes)
	}
	if (got.Environment == nil) != (want.Environment == nil) {
		t.Fatalf("environment presence mismatch: got %v, want %v", got.Environment, want.Environment)
	}
	if want.Environment != nil {
		if got.Environment.Category != want.Environment.Category {
			t.Fatalf("environment.Category: got %q, want %q", got.Environment.Category, want.Environment.Category)
		}
		attributesEqual(t, "environment", got.Environment.Attributes, want.Environment.Attributes)
	}
}

func attributesEqual(t *testing.T, context string, got, want []Attribute) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s attributes: got %d, want %d", context, len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Issuer != want[i].Issuer {
			t.Fatalf("%s attribute[%d]: got %+v, want %+v", context, i, got[i], want[i])
		}
		if got[i].EffectiveDataType() != want[i].EffectiveDataType() {
			t.Fatalf("%s attribute[%d].DataType: got %q, want %q", context, i, got[i].EffectiveDataType(), want[i].EffectiveDataType())
		}
		if len(got[i].Values) != len(want[i].Values) {
			t.Fatalf("%s attribute[%d] values: got %d, want %d", context, i, len(got[i].Values), len(want[i].Values))
		}
		for j := range want[i].Values {
			if got[i].Values[j] != want[i].Values[j] {
				t.Fatalf("%s attribute[%d].Values[%d]: got %q, want %q", context, i, j, got[i].Values[j], want[i].Values[j])
			}
		}
	}
}

func TestRequestMarshalUnmarshalRoundTrip(t *testing.T) {
	req := buildSampleRequest()

	encoded, err := Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := Unmarshal(encoded)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	requestsEqual(t, decoded, req)
}

func TestRequestMarshalUnmarshalRequestWithoutActionOrEnvironment(t *testing.T) {
	req := NewRequest()
	req.AddSubject(Subject{Attributes: attrsWithValues("s", 1, 1)})
	req.AddResource(Resource{Attributes: attrsWithValues("r", 1, 1)})

	encoded, err := Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := Unmarshal(encoded)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Action != nil {
		t.Fatalf("expected nil action, got %+v", decoded.Action)
	}
	if decoded.Environment != nil {
		t.Fatalf("expected nil environment, got %+v", decoded.Environment)
	}
}

func TestResourceOptionalContentRoundTrip(t *testing.T) {
	req := NewRequest()
	req.AddResource(Resource{Content: "<payload/>", HasContent: true})
	req.AddResource(Resource{})

	encoded, err := Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := Unmarshal(encoded)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Resources[0].HasContent || decoded.Resources[0].Content != "<payload/>" {
		t.Fatalf("resource[0]: got %+v", decoded.Resources[0])
	}
	if decoded.Resources[1].HasContent {
		t.Fatalf("resource[1]: expected no content, got %+v", decoded.Resources[1])
	}
}

func TestResponseMarshalUnmarshalRoundTrip(t *testing.T) {
	resp := &Response{}
	obligation, err := NewObligation("urn:obligation:log", FulfillOnPermit)
	if err != nil {
		t.Fatal(err)
	}
	assignment, err := NewAttributeAssignment("urn:assignment:reason")
	if err != nil {
		t.Fatal(err)
	}
	assignment.AddValue("because")
	obligation.AddAssignment(*assignment)

	result := Result{
		ResourceID: "urn:resource:1",
		Decision:   Permit,
		Status: Status{
			Message: "ok",
			Code:    StatusCode{Code: "urn:oasis:names:tc:xacml:1.0:status:ok"},
		},
	}
	result.AddObligation(*obligation)
	resp.AddResult(result)

	encoded, err := MarshalResponse(resp)
	if err != nil {
		t.Fatalf("MarshalResponse: %v", err)
	}
	decoded, err := UnmarshalResponse(encoded)
	if err != nil {
		t.Fatalf("UnmarshalResponse: %v", err)
	}
	if len(decoded.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(decoded.Results))
	}
	got := decoded.Results[0]
	if got.Decision != Permit || got.ResourceID != "urn:resource:1" || got.Status.Message != "ok" {
		t.Fatalf("result: got %+v", got)
	}
	if len(got.Obligations) != 1 || got.Obligations[0].ID != "urn:obligation:log" || got.Obligations[0].FulfillOn != FulfillOnPermit {
		t.Fatalf("obligations: got %+v", got.Obligations)
	}
	if len(got.Obligations[0].Assignments) != 1 || got.Obligations[0].Assignments[0].Values[0] != "because" {
		t.Fatalf("assignments: got %+v", got.Obligations[0].Assignments)
	}
}

func TestInvalidDecisionRejected(t *testing.T) {
	resp := &Response{}
	resp.AddResult(Result{Decision: "Maybe"})
	if _, err := MarshalResponse(resp); err == nil {
		t.Fatal("expected error for invalid decision")
	}
}

// TestCodecRoundTripThroughBase64 exercises the full wire path: marshal
// a request with three Subjects, two Resources, one Action and one
// Environment (each carrying three Attributes of three values), encode
// to Hessian bytes, wrap in Base64 at line size 64, decode and
// unmarshal, and compare the resulting tree.
func TestCodecRoundTripThroughBase64(t *testing.T) {
	req := buildSampleRequest()

	encoded, err := Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	wireBuf, err := hessian.Marshal(encoded)
	if err != nil {
		t.Fatalf("hessian.Marshal: %v", err)
	}
	wireBuf.Rewind()

	encodedB64 := buffer.New(wireBuf.Length() * 2)
	base64x.EncodeLineSize(wireBuf, encodedB64, base64x.DefaultLineSize)
	encodedB64.Rewind()

	rawBuf := buffer.New(wireBuf.Length())
	base64x.Decode(encodedB64, rawBuf)
	rawBuf.Rewind()

	decodedVal, err := hessian.Unmarshal(rawBuf)
	if err != nil {
		t.Fatalf("hessian.Unmarshal: %v", err)
	}
	decoded, err := Unmarshal(decodedVal)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	requestsEqual(t, decoded, req)
}
