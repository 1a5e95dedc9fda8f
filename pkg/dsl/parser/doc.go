// Package parser decodes ruleset documents (YAML or JSON) into the typed
// AST defined in package ast.
//
// The parser is the external deserializer in front of the rule engine: its
// only contract is to produce an ast.RuleSet conforming to the condition
// grammar, or fail with a *ParseError. It never loads anything into an
// engine and never validates cross-rule semantics (duplicate ids are caught
// at load time, structural safety by the validator).
//
// Documents decode through a generic value pass and are normalized into the
// grammar's value model (all numbers become float64), so one logical
// ruleset produces the same AST, and therefore the same content hash,
// whether it was written as YAML or JSON.
//
// Basic usage:
//
//	p := parser.NewParser()
//	rs, err := p.ParseFile("rulesets/fraud.yaml")
//	if err != nil {
//	    var perr *parser.ParseError
//	    if errors.As(err, &perr) {
//	        log.Fatalf("bad document: %v", perr)
//	    }
//	}
package parser
