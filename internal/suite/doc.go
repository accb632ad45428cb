// Package suite loads test declarations from YAML suite files.
//
// A suite file declares enums, generic types, fixtures, data providers and
// test classes. Loading links every file of a suite into one type universe
// and produces the model.Class and model.Method values consumed by the test
// builder.
//
// # File Format
//
//	assembly: calculator
//	enums:
//	  - name: Color
//	    members: [Red, Green, Blue]
//	types:
//	  - name: Box
//	    params: [T]
//	fixtures:
//	  - name: Database
//	providers:
//	  - name: Primes
//	    values: [2, 3, 5]
//	classes:
//	  - name: CalculatorTests
//	    parameters:
//	      - {name: seed, type: int}
//	    sources:
//	      - arguments: [1]
//	    methods:
//	      - name: AddsPrimes
//	        parameters:
//	          - {name: n, type: int}
//	        sources:
//	          - method: Primes
//
// # Sources
//
// Each entry under sources sets exactly one kind:
//
//   - arguments: one literal argument row
//   - method: rows from a named provider; instance: true invokes it on a
//     throwaway class instance
//   - range: the integers from..to with an optional step
//   - matrix: the product of per-parameter candidates, minus exclude rows
//   - combined: the product of the sources attached to each parameter
//   - shared: fixtures from the shared registry, one per parameter
//   - empty: a single empty row
//
// # Literals
//
// Plain YAML scalars map to int, float64, bool, string and nil. Typed
// literals are written as a mapping, {type: "Box<int>", value: 3}, and enum
// members as {type: Color, value: Red}. Bare strings and ints are converted
// to enum, int64 and float64 parameters where the parameter type is known.
//
// # Errors
//
// All problems found while loading are returned together as a
// *SuiteErrorCollection carrying the file, line and entity of each error.
package suite
