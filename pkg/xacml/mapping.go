package xacml

import (
	"fmt"

	"github.com/enricovianello/pep-go/pkg/hessian"
)

// Well-known Hessian type names the wire protocol uses to tag each
// mapped entity, matching the org.glite.authz.pep.model package names
// carried on the wire by interoperating PDP implementations.
const (
	typeRequest              = "org.glite.authz.pep.model.Request"
	typeResponse             = "org.glite.authz.pep.model.Response"
	typeSubject              = "org.glite.authz.pep.model.Subject"
	typeResource             = "org.glite.authz.pep.model.Resource"
	typeAction               = "org.glite.authz.pep.model.Action"
	typeEnvironment          = "org.glite.authz.pep.model.Environment"
	typeAttribute            = "org.glite.authz.pep.model.Attribute"
	typeResult               = "org.glite.authz.pep.model.Result"
	typeStatus               = "org.glite.authz.pep.model.Status"
	typeStatusCode           = "org.glite.authz.pep.model.StatusCode"
	typeObligation          = "org.glite.authz.pep.model.Obligation"
	typeAttributeAssignment = "org.glite.authz.pep.model.AttributeAssignment"
)

// Canonical field names. "subjects", "resources", "action",
// "environment", "attributes", "values", "id", "dataType", "issuer",
// "category", "decision", "status", "statusCode", "obligations",
// "fulfillOn", "assignments" and "content" are named directly by the
// wire protocol; "message", "resourceId", "results", "code" and
// "subCode" round out the set that a complete Request/Response
// round trip needs and are not otherwise named — see DESIGN.md for
// this open-question resolution.
const (
	keySubjects    = "subjects"
	keyResources   = "resources"
	keyAction      = "action"
	keyEnvironment = "environment"
	keyAttributes  = "attributes"
	keyValues      = "values"
	keyID          = "id"
	keyDataType    = "dataType"
	keyIssuer      = "issuer"
	keyCategory    = "category"
	keyDecision    = "decision"
	keyStatus      = "status"
	keyStatusCode  = "statusCode"
	keyObligations = "obligations"
	keyFulfillOn   = "fulfillOn"
	keyAssignments = "assignments"
	keyContent     = "content"
	keyMessage     = "message"
	keyResourceID  = "resourceId"
	keyResults     = "results"
	keyCode        = "code"
	keySubCode     = "subCode"
)

func stringOrNull(s string, present bool) hessian.Value {
	if !present || s == "" {
		return hessian.Null{}
	}
	return hessian.String(s)
}

func readOptionalString(m *hessian.Map, key string) (string, error) {
	v, ok := m.Get(key)
	if !ok {
		return "", nil
	}
	switch t := v.(type) {
	case hessian.Null:
		return "", nil
	case hessian.String:
		return string(t), nil
	default:
		return "", fmt.Errorf("xacml: field %q: expected String or Null, got %T", key, v)
	}
}

func requireString(m *hessian.Map, key string) (string, error) {
	v, ok := m.Get(key)
	if !ok {
		return "", fmt.Errorf("xacml: missing mandatory field %q", key)
	}
	s, ok := v.(hessian.String)
	if !ok {
		return "", fmt.Errorf("xacml: field %q: expected String, got %T", key, v)
	}
	if string(s) == "" {
		return "", fmt.Errorf("xacml: field %q must not be empty", key)
	}
	return string(s), nil
}

func requireMap(v hessian.Value, context string) (*hessian.Map, error) {
	m, ok := v.(*hessian.Map)
	if !ok {
		return nil, fmt.Errorf("xacml: %s: expected Map, got %T", context, v)
	}
	return m, nil
}

func requireList(v hessian.Value, context string) (*hessian.List, error) {
	l, ok := v.(*hessian.List)
	if !ok {
		return nil, fmt.Errorf("xacml: %s: expected List, got %T", context, v)
	}
	return l, nil
}

func stringValuesToList(values []string) *hessian.List {
	list := &hessian.List{}
	for _, v := range values {
		list.Elements = append(list.Elements, hessian.String(v))
	}
	return list
}

func listToStringValues(v hessian.Value, context string) ([]string, error) {
	l, err := requireList(v, context)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(l.Elements))
	for _, e := range l.Elements {
		s, ok := e.(hessian.String)
		if !ok {
			return nil, fmt.Errorf("xacml: %s: element is %T, want String", context, e)
		}
		out = append(out, string(s))
	}
	return out, nil
}

// --- Attribute ---

func marshalAttribute(a Attribute) (*hessian.Map, error) {
	if a.ID == "" {
		return nil, fmt.Errorf("xacml: attribute id is mandatory")
	}
	m := &hessian.Map{Type: typeAttribute}
	m.Put(keyID, hessian.String(a.ID))
	m.Put(keyDataType, hessian.String(a.EffectiveDataType()))
	m.Put(keyIssuer, stringOrNull(a.Issuer, a.Issuer != ""))
	m.Put(keyValues, stringValuesToList(a.Values))
	return m, nil
}

func unmarshalAttribute(v hessian.Value) (Attribute, error) {
	m, err := requireMap(v, "attribute")
	if err != nil {
		return Attribute{}, err
	}
	id, err := requireString(m, keyID)
	if err != nil {
		return Attribute{}, err
	}
	dataType, err := readOptionalString(m, keyDataType)
	if err != nil {
		return Attribute{}, err
	}
	issuer, err := readOptionalString(m, keyIssuer)
	if err != nil {
		return Attribute{}, err
	}
	valuesVal, ok := m.Get(keyValues)
	var values []string
	if ok {
		values, err = listToStringValues(valuesVal, "attribute values")
		if err != nil {
			return Attribute{}, err
		}
	}
	return Attribute{ID: id, DataType: dataType, Issuer: issuer, Values: values}, nil
}

func marshalAttributeList(attrs []Attribute) (*hessian.List, error) {
	list := &hessian.List{}
	for _, a := range attrs {
		am, err := marshalAttribute(a)
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, am)
	}
	return list, nil
}

func unmarshalAttributeList(v hessian.Value) ([]Attribute, error) {
	l, err := requireList(v, "attributes")
	if err != nil {
		return nil, err
	}
	out := make([]Attribute, 0, len(l.Elements))
	for _, e := range l.Elements {
		a, err := unmarshalAttribute(e)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// --- Subject / Resource / Action / Environment ---

func marshalContainer(typ, category string, attrs []Attribute) (*hessian.Map, error) {
	m := &hessian.Map{Type: typ}
	m.Put(keyCategory, stringOrNull(category, category != ""))
	attrList, err := marshalAttributeList(attrs)
	if err != nil {
		return nil, err
	}
	m.Put(keyAttributes, attrList)
	return m, nil
}

func unmarshalContainer(v hessian.Value, context string) (category string, attrs []Attribute, err error) {
	m, err := requireMap(v, context)
	if err != nil {
		return "", nil, err
	}
	category, err = readOptionalString(m, keyCategory)
	if err != nil {
		return "", nil, err
	}
	if attrVal, ok := m.Get(keyAttributes); ok {
		attrs, err = unmarshalAttributeList(attrVal)
		if err != nil {
			return "", nil, err
		}
	}
	return category, attrs, nil
}

func marshalSubject(s Subject) (*hessian.Map, error) {
	return marshalContainer(typeSubject, s.Category, s.Attributes)
}

func unmarshalSubject(v hessian.Value) (Subject, error) {
	category, attrs, err := unmarshalContainer(v, "subject")
	if err != nil {
		return Subject{}, err
	}
	return Subject{Category: category, Attributes: attrs}, nil
}

func marshalResource(r Resource) (*hessian.Map, error) {
	m, err := marshalContainer(typeResource, r.Category, r.Attributes)
	if err != nil {
		return nil, err
	}
	m.Put(keyContent, stringOrNull(r.Content, r.HasContent))
	return m, nil
}

func unmarshalResource(v hessian.Value) (Resource, error) {
	m, err := requireMap(v, "resource")
	if err != nil {
		return Resource{}, err
	}
	category, attrs, err := unmarshalContainer(v, "resource")
	if err != nil {
		return Resource{}, err
	}
	content, err := readOptionalString(m, keyContent)
	if err != nil {
		return Resource{}, err
	}
	hasContent := false
	if cv, ok := m.Get(keyContent); ok {
		if _, isNull := cv.(hessian.Null); !isNull {
			hasContent = true
		}
	}
	return Resource{Category: category, Attributes: attrs, Content: content, HasContent: hasContent}, nil
}

func marshalAction(a Action) (*hessian.Map, error) {
	return marshalContainer(typeAction, a.Category, a.Attributes)
}

func unmarshalAction(v hessian.Value) (Action, error) {
	category, attrs, err := unmarshalContainer(v, "action")
	if err != nil {
		return Action{}, err
	}
	return Action{Category: category, Attributes: attrs}, nil
}

func marshalEnvironment(e Environment) (*hessian.Map, error) {
	return marshalContainer(typeEnvironment, e.Category, e.Attributes)
}

func unmarshalEnvironment(v hessian.Value) (Environment, error) {
	category, attrs, err := unmarshalContainer(v, "environment")
	if err != nil {
		return Environment{}, err
	}
	return Environment{Category: category, Attributes: attrs}, nil
}

// --- Request ---

// Marshal projects a Request onto its Hessian wire representation.
func Marshal(r *Request) (hessian.Value, error) {
	if r == nil {
		return nil, fmt.Errorf("xacml: nil request")
	}
	m := &hessian.Map{Type: typeRequest}

	subjList := &hessian.List{}
	for _, s := range r.Subjects {
		sm, err := marshalSubject(s)
		if err != nil {
			return nil, err
		}
		subjList.Elements = append(subjList.Elements, sm)
	}
	m.Put(keySubjects, subjList)

	resList := &hessian.List{}
	for _, res := range r.Resources {
		rm, err := marshalResource(res)
		if err != nil {
			return nil, err
		}
		resList.Elements = append(resList.Elements, rm)
	}
	m.Put(keyResources, resList)

	if r.Action != nil {
		am, err := marshalAction(*r.Action)
		if err != nil {
			return nil, err
		}
		m.Put(keyAction, am)
	} else {
		m.Put(keyAction, hessian.Null{})
	}

	if r.Environment != nil {
		em, err := marshalEnvironment(*r.Environment)
		if err != nil {
			return nil, err
		}
		m.Put(keyEnvironment, em)
	} else {
		m.Put(keyEnvironment, hessian.Null{})
	}

	return m, nil
}

// Unmarshal materializes a Request from its Hessian wire representation.
func Unmarshal(v hessian.Value) (*Request, error) {
	m, err := requireMap(v, "request")
	if err != nil {
		return nil, err
	}
	req := NewRequest()

	if subjVal, ok := m.Get(keySubjects); ok {
		subjList, err := requireList(subjVal, "request.subjects")
		if err != nil {
			return nil, err
		}
		for _, e := range subjList.Elements {
			s, err := unmarshalSubject(e)
			if err != nil {
				return nil, err
			}
			req.AddSubject(s)
		}
	}

	if resVal, ok := m.Get(keyResources); ok {
		resList, err := requireList(resVal, "request.resources")
		if err != nil {
			return nil, err
		}
		for _, e := range resList.Elements {
			res, err := unmarshalResource(e)
			if err != nil {
				return nil, err
			}
			req.AddResource(res)
		}
	}

	if actVal, ok := m.Get(keyAction); ok {
		if _, isNull := actVal.(hessian.Null); !isNull {
			a, err := unmarshalAction(actVal)
			if err != nil {
				return nil, err
			}
			req.SetAction(a)
		}
	}

	if envVal, ok := m.Get(keyEnvironment); ok {
		if _, isNull := envVal.(hessian.Null); !isNull {
			e, err := unmarshalEnvironment(envVal)
			if err != nil {
				return nil, err
			}
			req.SetEnvironment(e)
		}
	}

	return req, nil
}

// --- AttributeAssignment / Obligation ---

func marshalAttributeAssignment(a AttributeAssignment) (*hessian.Map, error) {
	if a.ID == "" {
		return nil, fmt.Errorf("xacml: attribute assignment id is mandatory")
	}
	m := &hessian.Map{Type: typeAttributeAssignment}
	m.Put(keyID, hessian.String(a.ID))
	m.Put(keyValues, stringValuesToList(a.Values))
	return m, nil
}

func unmarshalAttributeAssignment(v hessian.Value) (AttributeAssignment, error) {
	m, err := requireMap(v, "attribute assignment")
	if err != nil {
		return AttributeAssignment{}, err
	}
	id, err := requireString(m, keyID)
	if err != nil {
		return AttributeAssignment{}, err
	}
	var values []string
	if valuesVal, ok := m.Get(keyValues); ok {
		values, err = listToStringValues(valuesVal, "attribute assignment values")
		if err != nil {
			return AttributeAssignment{}, err
		}
	}
	return AttributeAssignment{ID: id, Values: values}, nil
}

func marshalObligation(o Obligation) (*hessian.Map, error) {
	if o.ID == "" {
		return nil, fmt.Errorf("xacml: obligation id is mandatory")
	}
	if !o.FulfillOn.Valid() {
		return nil, fmt.Errorf("xacml: invalid FulfillOn value %d", o.FulfillOn)
	}
	m := &hessian.Map{Type: typeObligation}
	m.Put(keyID, hessian.String(o.ID))
	m.Put(keyFulfillOn, hessian.Integer(o.FulfillOn))
	assignments := &hessian.List{}
	for _, a := range o.Assignments {
		am, err := marshalAttributeAssignment(a)
		if err != nil {
			return nil, err
		}
		assignments.Elements = append(assignments.Elements, am)
	}
	m.Put(keyAssignments, assignments)
	return m, nil
}

func unmarshalObligation(v hessian.Value) (Obligation, error) {
	m, err := requireMap(v, "obligation")
	if err != nil {
		return Obligation{}, err
	}
	id, err := requireString(m, keyID)
	if err != nil {
		return Obligation{}, err
	}
	fulfillOnVal, ok := m.Get(keyFulfillOn)
	if !ok {
		return Obligation{}, fmt.Errorf("xacml: obligation missing mandatory field %q", keyFulfillOn)
	}
	fi, ok := fulfillOnVal.(hessian.Integer)
	if !ok {
		return Obligation{}, fmt.Errorf("xacml: obligation field %q: expected Integer, got %T", keyFulfillOn, fulfillOnVal)
	}
	fulfillOn := FulfillOn(fi)
	if !fulfillOn.Valid() {
		return Obligation{}, fmt.Errorf("xacml: obligation field %q: invalid value %d", keyFulfillOn, fi)
	}
	var assignments []AttributeAssignment
	if assignVal, ok := m.Get(keyAssignments); ok {
		assignList, err := requireList(assignVal, "obligation.assignments")
		if err != nil {
			return Obligation{}, err
		}
		for _, e := range assignList.Elements {
			a, err := unmarshalAttributeAssignment(e)
			if err != nil {
				return Obligation{}, err
			}
			assignments = append(assignments, a)
		}
	}
	return Obligation{ID: id, FulfillOn: fulfillOn, Assignments: assignments}, nil
}

// --- StatusCode / Status / Result / Response ---

func marshalStatusCode(sc StatusCode) *hessian.Map {
	m := &hessian.Map{Type: typeStatusCode}
	m.Put(keyCode, hessian.String(sc.Code))
	if sc.SubCode != nil {
		m.Put(keySubCode, marshalStatusCode(*sc.SubCode))
	} else {
		m.Put(keySubCode, hessian.Null{})
	}
	return m
}

func unmarshalStatusCode(v hessian.Value) (StatusCode, error) {
	m, err := requireMap(v, "status code")
	if err != nil {
		return StatusCode{}, err
	}
	code, err := readOptionalString(m, keyCode)
	if err != nil {
		return StatusCode{}, err
	}
	var sub *StatusCode
	if subVal, ok := m.Get(keySubCode); ok {
		if _, isNull := subVal.(hessian.Null); !isNull {
			s, err := unmarshalStatusCode(subVal)
			if err != nil {
				return StatusCode{}, err
			}
			sub = &s
		}
	}
	return StatusCode{Code: code, SubCode: sub}, nil
}

func marshalStatus(s Status) *hessian.Map {
	m := &hessian.Map{Type: typeStatus}
	m.Put(keyMessage, hessian.String(s.Message))
	m.Put(keyStatusCode, marshalStatusCode(s.Code))
	return m
}

func unmarshalStatus(v hessian.Value) (Status, error) {
	m, err := requireMap(v, "status")
	if err != nil {
		return Status{}, err
	}
	message, err := readOptionalString(m, keyMessage)
	if err != nil {
		return Status{}, err
	}
	codeVal, ok := m.Get(keyStatusCode)
	if !ok {
		return Status{}, fmt.Errorf("xacml: status missing mandatory field %q", keyStatusCode)
	}
	code, err := unmarshalStatusCode(codeVal)
	if err != nil {
		return Status{}, err
	}
	return Status{Message: message, Code: code}, nil
}

func marshalResult(r Result) (*hessian.Map, error) {
	if !r.Decision.Valid() {
		return nil, fmt.Errorf("xacml: invalid decision %q", r.Decision)
	}
	m := &hessian.Map{Type: typeResult}
	m.Put(keyResourceID, stringOrNull(r.ResourceID, r.ResourceID != ""))
	m.Put(keyDecision, hessian.String(string(r.Decision)))
	m.Put(keyStatus, marshalStatus(r.Status))
	obligations := &hessian.List{}
	for _, o := range r.Obligations {
		om, err := marshalObligation(o)
		if err != nil {
			return nil, err
		}
		obligations.Elements = append(obligations.Elements, om)
	}
	m.Put(keyObligations, obligations)
	return m, nil
}

func unmarshalResult(v hessian.Value) (Result, error) {
	m, err := requireMap(v, "result")
	if err != nil {
		return Result{}, err
	}
	resourceID, err := readOptionalString(m, keyResourceID)
	if err != nil {
		return Result{}, err
	}
	decisionStr, err := requireString(m, keyDecision)
	if err != nil {
		return Result{}, err
	}
	decision := Decision(decisionStr)
	if !decision.Valid() {
		return Result{}, fmt.Errorf("xacml: invalid decision %q", decisionStr)
	}
	statusVal, ok := m.Get(keyStatus)
	if !ok {
		return Result{}, fmt.Errorf("xacml: result missing mandatory field %q", keyStatus)
	}
	status, err := unmarshalStatus(statusVal)
	if err != nil {
		return Result{}, err
	}
	var obligations []Obligation
	if oblVal, ok := m.Get(keyObligations); ok {
		oblList, err := requireList(oblVal, "result.obligations")
		if err != nil {
			return Result{}, err
		}
		for _, e := range oblList.Elements {
			o, err := unmarshalObligation(e)
			if err != nil {
				return Result{}, err
			}
			obligations = append(obligations, o)
		}
	}
	return Result{ResourceID: resourceID, Decision: decision, Status: status, Obligations: obligations}, nil
}

// MarshalResponse projects a Response onto its Hessian wire representation.
func MarshalResponse(r *Response) (hessian.Value, error) {
	if r == nil {
		return nil, fmt.Errorf("xacml: nil response")
	}
	m := &hessian.Map{Type: typeResponse}
	results := &hessian.List{}
	for _, res := range r.Results {
		rm, err := marshalResult(res)
		if err != nil {
			return nil, err
		}
		results.Elements = append(results.Elements, rm)
	}
	m.Put(keyResults, results)
	return m, nil
}

// UnmarshalResponse materializes a Response from its Hessian wire
// representation. The Request back reference is left nil; the PEP
// client sets it after a successful round trip.
func UnmarshalResponse(v hessian.Value) (*Response, error) {
	m, err := requireMap(v, "response")
	if err != nil {
		return nil, err
	}
	resp := &Response{}
	if resultsVal, ok := m.Get(keyResults); ok {
		resultsList, err := requireList(resultsVal, "response.results")
		if err != nil {
			return nil, err
		}
		for _, e := range resultsList.Elements {
			r, err := unmarshalResult(e)
			if err != nil {
				return nil, err
			}
			resp.AddResult(r)
		}
	}
	return resp, nil
}
