package scoring

import (
	"bytes"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const requestSchemaURL = "schema://scorer-request.json"

const requestSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"enum": ["COMPUTE_PRESSURE", "COMPUTE_VELOCITY_CV", "COMPUTE_ANGULAR_ERROR", "COMPUTE_LCS_COMPLIANCE"]},
    "pressureSamples": {"type": "array", "items": {"type": "number", "minimum": 0, "maximum": 1}},
    "points": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["x", "y", "t"],
        "properties": {"x": {"type": "number"}, "y": {"type": "number"}, "t": {"type": "number"}}
      }
    },
    "strokeAngles": {"type": "array", "items": {"type": "number"}},
    "symmetryAxes": {"type": "integer", "minimum": 1},
    "requiredOrder": {"type": "array", "items": {"type": "integer"}},
    "userOrder": {"type": "array", "items": {"type": "integer"}}
  },
  "allOf": [
    {"if": {"properties": {"type": {"const": "COMPUTE_PRESSURE"}}}, "then": {"required": ["pressureSamples"]}},
    {"if": {"properties": {"type": {"const": "COMPUTE_VELOCITY_CV"}}}, "then": {"required": ["points"]}},
    {"if": {"properties": {"type": {"const": "COMPUTE_ANGULAR_ERROR"}}}, "then": {"required": ["strokeAngles", "symmetryAxes"]}},
    {"if": {"properties": {"type": {"const": "COMPUTE_LCS_COMPLIANCE"}}}, "then": {"required": ["requiredOrder", "userOrder"]}}
  ]
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func requestValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(requestSchema)))
		if err != nil {
			compileErr = errors.Wrap(err, "parse request schema")
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(requestSchemaURL, doc); err != nil {
			compileErr = errors.Wrap(err, "add request schema")
			return
		}
		compiledSchema, compileErr = c.Compile(requestSchemaURL)
		if compileErr != nil {
			compileErr = errors.Wrap(compileErr, "compile request schema")
		}
	})
	return compiledSchema, compileErr
}

// DecodeRequest validates raw JSON against the request schema and decodes it.
func DecodeRequest(raw []byte) (Request, error) {
	schema, err := requestValidator()
	if err != nil {
		return Request{}, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Request{}, errors.Wrap(err, "invalid JSON")
	}
	if err := schema.Validate(inst); err != nil {
		return Request{}, errors.Wrap(err, "request rejected")
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, errors.Wrap(err, "decode request")
	}
	return req, nil
}
