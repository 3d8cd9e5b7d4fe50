package schema

import (
	"bytes"
	"fmt"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
)

// Response is the part of a decoded JSON-RPC response the checker reads.
// transport.Envelope implements it.
type Response interface {
	ErrorObject() *jsonrpc2.Error
	// ResultJSON returns the raw result, or nil when it is null or absent.
	ResultJSON() []byte
}

// Verdict is the outcome of a check. Issues is empty iff Passed is true.
type Verdict struct {
	Passed bool
	Issues []string
}

func pass() Verdict { return Verdict{Passed: true, Issues: []string{}} }

func fail(issues ...string) Verdict { return Verdict{Passed: false, Issues: issues} }

// Validate checks resp against the descriptor registered for method in
// table. Methods without a descriptor only need to be error free.
func Validate(method string, resp Response, table Table) Verdict {
	return Check(resp, table.Lookup(method))
}

// Check applies d to resp. The steps short-circuit in order: an error
// response always fails, a null result passes iff d is nullable, then the
// array or object shape is checked.
//
// Check panics if d has an unknown kind; tables loaded from configuration
// should be checked with Table.Validate first.
func Check(resp Response, d Descriptor) Verdict {
	if err := d.validate(); err != nil {
		panic(err)
	}

	if rpcErr := resp.ErrorObject(); rpcErr != nil {
		return fail(fmt.Sprintf("Error response: code=%d message=%s", rpcErr.Code, rpcErr.Message))
	}

	result := resp.ResultJSON()
	if result == nil {
		if d.Nullable {
			return pass()
		}
		return fail("Returned null but schema does not allow it")
	}

	var issues []string
	switch d.Kind {
	case KindArray:
		issues = checkArray(result, d.ItemFields)
	case KindObject:
		issues = checkObject(result, d.RequiredFields)
	}

	if len(issues) == 0 {
		return pass()
	}
	return fail(issues...)
}

func checkArray(result []byte, itemFields []string) []string {
	if typ := jsonType(result); typ != "array" {
		return []string{"Expected array, got " + typ}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(result, &items); err != nil {
		return []string{fmt.Sprintf("Invalid array result: %v", err)}
	}
	if len(items) == 0 || len(itemFields) == 0 {
		return nil
	}

	// Only the first element is sampled.
	keys := objectKeys(items[0])
	var issues []string
	for _, field := range itemFields {
		if _, ok := keys[field]; !ok {
			issues = append(issues, "Array item missing required field: "+field)
		}
	}
	return issues
}

func checkObject(result []byte, requiredFields []string) []string {
	if typ := jsonType(result); typ != "object" {
		return []string{"Expected object, got " + typ}
	}

	keys := objectKeys(result)
	var issues []string
	for _, field := range requiredFields {
		if _, ok := keys[field]; !ok {
			issues = append(issues, "Missing required field: "+field)
		}
	}
	return issues
}

// objectKeys returns the keys of a JSON object. Anything that is not an
// object has no keys.
func objectKeys(raw []byte) map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if jsonType(raw) != "object" {
		return nil
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

// jsonType names the JSON type of raw from its first significant byte.
func jsonType(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "null"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
