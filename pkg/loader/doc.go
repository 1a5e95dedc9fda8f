// Package loader wires ruleset documents into the engine.
//
// A Source produces parsed rulesets (FileSource reads a YAML or JSON file;
// MemorySource serves a ruleset held in memory). The Manager loads a source
// into the engine, records successful loads in the version registry, and
// updates ruleset metrics. With watching enabled, Run blocks and reloads the
// file on change, debounced through fsnotify; a reload that fails to parse
// or validate leaves the previous ruleset serving.
//
//	src := loader.NewFileSource("rules.yaml", logger)
//	mgr, err := loader.NewManager(cfg, src, eng, reg, collector, logger)
//	if err != nil {
//	    return err
//	}
//	if err := mgr.Load(ctx); err != nil {
//	    return err
//	}
//	go mgr.Run(ctx)
package loader
