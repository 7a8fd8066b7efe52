// Package harness runs compile scenarios against a schema file.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: orders
//	description: "Filters over the Order table"
//	schema: ../schemas/order.yaml
//	table: Shop.Order
//	now: "2024-03-15T10:30:00Z"
//	options:
//	  strategy: lambda
//	cases:
//	  - name: sku
//	    filter: 'Items.Sku = "X1"'
//	    expect:
//	      text: 'Items != null && Items.Any(i => i.Sku == "X1")'
//	  - name: unknown field
//	    filter: 'nope = "1"'
//	    expect:
//	      codes: [FIELD_NOT_FOUND]
//	  - name: projection
//	    select: "status, Name"
//	    expect:
//	      text: "new { Status, Customer.Name }"
//	  - name: search
//	    fuzzy: pa
//	    columns: "status"
//	    expect:
//	      contains: ["Status in"]
//
// Each case runs exactly one of filter, select or fuzzy. The schema path
// is relative to the scenario file.
//
// # Expectations
//
//   - text: the compiled text must equal this value
//   - contains: the compiled text must contain every substring
//   - codes: the diagnostic codes, in clause order
//   - clean: no diagnostic may be reported
//   - params: placeholder values in literal form (parameterised output)
//
// # Deterministic Testing
//
// Relative dates resolve against a fixed clock (now, or
// testutil.ReferenceTime when absent), so results are reproducible and
// can be compared against golden files with RunWithGolden.
package harness
